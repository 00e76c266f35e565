package search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"go.uber.org/zap"

	httpx "github.com/sonicsync/sonicsync/internal/http"
	"github.com/sonicsync/sonicsync/internal/model"
)

// FastFetch is the direct-HTTP search strategy. It issues one GET per
// configured base URL (primary site first, mirrors after) and parses the
// returned markup. Preferred first because it is cheap; the client's
// timeout bounds each request.
type FastFetch struct {
	client   *httpx.Client
	baseURLs []string
	logger   *zap.Logger
}

// NewFastFetch creates a FastFetch over the given base URLs. The client
// carries the declared identity header and the per-request timeout.
func NewFastFetch(client *httpx.Client, baseURLs []string, logger *zap.Logger) *FastFetch {
	return &FastFetch{
		client:   client,
		baseURLs: baseURLs,
		logger:   logger,
	}
}

// Backend implements Source.
func (f *FastFetch) Backend() model.SourceBackend {
	return model.BackendFastFetch
}

// Search implements Source. Base URLs are tried in order; the first one
// yielding any candidate wins.
func (f *FastFetch) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	var lastErr error

	for _, base := range f.baseURLs {
		searchURL := fmt.Sprintf("%s/?s=%s", strings.TrimRight(base, "/"), url.QueryEscape(query))

		page, err := f.client.GetString(ctx, searchURL)
		if err != nil {
			lastErr = classifyFetchErr(err)
			f.logger.Debug("fastfetch request failed",
				zap.String("url", searchURL), zap.Error(err))
			continue
		}

		candidates, err := extractCandidates(page, base, model.BackendFastFetch)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrTransport, err)
			continue
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoResults
}

// classifyFetchErr maps low-level fetch failures onto the Source error
// taxonomy.
func classifyFetchErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
