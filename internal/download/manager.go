package download

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	httpx "github.com/sonicsync/sonicsync/internal/http"
	ioutils "github.com/sonicsync/sonicsync/internal/io"
	"github.com/sonicsync/sonicsync/internal/metrics"
	"github.com/sonicsync/sonicsync/internal/model"
)

var (
	// ErrInvalidContent means the probe declared a non-audio content
	// type. Never retried.
	ErrInvalidContent = errors.New("download: not an audio resource")

	// ErrSizeOutOfRange means the declared size fell outside the accepted
	// bounds. Never retried.
	ErrSizeOutOfRange = errors.New("download: declared size out of range")

	// ErrRetriesExhausted means every transfer attempt failed after a
	// passed probe.
	ErrRetriesExhausted = errors.New("download: retries exhausted")
)

// Options configure a Manager.
type Options struct {
	// Dir is the directory downloaded files land in.
	Dir string

	// MinSizeBytes and MaxSizeBytes bound the declared content length.
	// A server that declares no length passes the size check and is
	// bounded during transfer instead.
	MinSizeBytes int64
	MaxSizeBytes int64

	// MaxRetries is the total number of transfer attempts.
	MaxRetries int

	// BackoffBase is the first retry delay; attempt n waits
	// BackoffBase << n.
	BackoffBase time.Duration
}

// Manager downloads validated candidates into a destination directory.
type Manager struct {
	client *httpx.Client
	opts   Options
	logger *zap.Logger
}

// NewManager creates a Manager. Zero option fields get conservative
// defaults.
func NewManager(client *httpx.Client, opts Options, logger *zap.Logger) *Manager {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.MinSizeBytes <= 0 {
		opts.MinSizeBytes = 1 << 20
	}
	if opts.MaxSizeBytes <= 0 {
		opts.MaxSizeBytes = 100 << 20
	}
	return &Manager{client: client, opts: opts, logger: logger}
}

// Download validates the candidate with a metadata probe, then streams
// it to a uniquely named file under the destination directory. The
// probe runs once: a rejection (wrong content type, size out of bounds)
// fails immediately without consuming a transfer attempt. Transport
// failures after a passed probe are retried up to MaxRetries attempts
// with exponential backoff, honouring context cancellation between
// attempts.
//
// Returns the final file path and its size on disk.
func (m *Manager) Download(ctx context.Context, candidate model.Candidate, preferredName string) (string, int64, error) {
	probe, err := m.client.DoProbe(ctx, candidate.URL)
	if err != nil {
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}
		// An unprobeable link still gets transfer attempts; plenty of
		// hosts reject HEAD but serve GET fine.
		m.logger.Debug("probe failed, proceeding to transfer",
			zap.String("url", candidate.URL), zap.Error(err))
	} else {
		if !probe.IsAudio() {
			metrics.DownloadAttemptsTotal.WithLabelValues("rejected").Inc()
			return "", 0, fmt.Errorf("%w: content type %q", ErrInvalidContent, probe.ContentType)
		}
		if probe.ContentLength >= 0 &&
			(probe.ContentLength < m.opts.MinSizeBytes || probe.ContentLength > m.opts.MaxSizeBytes) {
			metrics.DownloadAttemptsTotal.WithLabelValues("rejected").Inc()
			return "", 0, fmt.Errorf("%w: %d bytes declared", ErrSizeOutOfRange, probe.ContentLength)
		}
	}

	ext := fileExtension(probe.ContentType, candidate.URL)
	base := ioutils.SanitizeFileName(preferredName)

	var lastErr error
	for attempt := 0; attempt < m.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := m.opts.BackoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", 0, ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		filePath, size, err := m.transfer(ctx, candidate.URL, base, ext)
		if err == nil {
			metrics.DownloadAttemptsTotal.WithLabelValues("success").Inc()
			return filePath, size, nil
		}
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}

		metrics.DownloadAttemptsTotal.WithLabelValues("transport_error").Inc()
		m.logger.Debug("transfer attempt failed",
			zap.String("url", candidate.URL),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		lastErr = err
	}

	return "", 0, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, m.opts.MaxRetries, lastErr)
}

// transfer streams one attempt to a freshly claimed file, removing the
// partial file on failure.
func (m *Manager) transfer(ctx context.Context, rawURL, base, ext string) (string, int64, error) {
	filePath, f, err := ioutils.CreateUnique(m.opts.Dir, base, ext)
	if err != nil {
		return "", 0, err
	}

	written, err := m.client.Download(ctx, rawURL, f, m.opts.MaxSizeBytes)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written < m.opts.MinSizeBytes {
		err = fmt.Errorf("received %d bytes, below minimum %d", written, m.opts.MinSizeBytes)
	}
	if err != nil {
		os.Remove(filePath)
		return "", 0, err
	}

	return filePath, written, nil
}

// fileExtension picks the audio extension from the declared content
// type, falling back to the URL path and finally to .mp3.
func fileExtension(contentType, rawURL string) string {
	switch {
	case strings.Contains(contentType, "audio/mpeg"), strings.Contains(contentType, "mp3"):
		return ".mp3"
	case strings.Contains(contentType, "audio/mp4"), strings.Contains(contentType, "m4a"):
		return ".m4a"
	}

	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext == ".mp3" || ext == ".m4a" {
			return ext
		}
	}
	return ".mp3"
}
