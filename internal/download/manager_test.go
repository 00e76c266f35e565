package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	httpx "github.com/sonicsync/sonicsync/internal/http"
	"github.com/sonicsync/sonicsync/internal/model"
)

func testManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = time.Millisecond
	}
	client := httpx.NewClient("test-agent", 5*time.Second)
	return NewManager(client, opts, zap.NewNop())
}

func TestDownload_Success(t *testing.T) {
	payload := strings.Repeat("a", 2048)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
		if r.Method == http.MethodHead {
			return
		}
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	m := testManager(t, Options{Dir: dir, MinSizeBytes: 1024, MaxSizeBytes: 1 << 20, MaxRetries: 3})

	path, size, err := m.Download(context.Background(),
		model.Candidate{Title: "Some Song", URL: srv.URL + "/songs/some.mp3"}, "Some Song")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", size, len(payload))
	}
	if filepath.Ext(path) != ".mp3" {
		t.Errorf("path %q extension, want .mp3", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != payload {
		t.Error("file contents differ from served payload")
	}
}

func TestDownload_RejectsNonAudioWithoutTransfer(t *testing.T) {
	var gets atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>not a song</html>")
	}))
	defer srv.Close()

	m := testManager(t, Options{MinSizeBytes: 1, MaxSizeBytes: 1 << 20, MaxRetries: 3})

	_, _, err := m.Download(context.Background(),
		model.Candidate{URL: srv.URL + "/page"}, "name")
	if !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("err = %v, want ErrInvalidContent", err)
	}
	if gets.Load() != 0 {
		t.Errorf("rejection triggered %d GET requests, want 0", gets.Load())
	}
}

func TestDownload_RejectsDeclaredSizeOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		declare int64
	}{
		{"too small", 10},
		{"too large", 200 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "audio/mpeg")
				w.Header().Set("Content-Length", fmt.Sprint(tt.declare))
				if r.Method == http.MethodGet {
					t.Error("rejected candidate must never reach transfer")
				}
			}))
			defer srv.Close()

			m := testManager(t, Options{MinSizeBytes: 1 << 10, MaxSizeBytes: 100 << 20, MaxRetries: 3})

			_, _, err := m.Download(context.Background(),
				model.Candidate{URL: srv.URL + "/big.mp3"}, "name")
			if !errors.Is(err, ErrSizeOutOfRange) {
				t.Fatalf("err = %v, want ErrSizeOutOfRange", err)
			}
		})
	}
}

func TestDownload_DefaultMinimumSizeApplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Length", "10")
		if r.Method == http.MethodGet {
			t.Error("under-minimum candidate must never reach transfer")
		}
	}))
	defer srv.Close()

	// Zero options: the 1 MiB floor must hold without configuration.
	m := testManager(t, Options{})

	_, _, err := m.Download(context.Background(),
		model.Candidate{URL: srv.URL + "/tiny.mp3"}, "name")
	if !errors.Is(err, ErrSizeOutOfRange) {
		t.Fatalf("err = %v, want ErrSizeOutOfRange", err)
	}
}

func TestDownload_RetriesTransportFailuresThenSucceeds(t *testing.T) {
	payload := strings.Repeat("b", 2048)
	var gets atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		if r.Method == http.MethodHead {
			return
		}
		// First two transfers fail, the third completes.
		if gets.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	const backoff = 25 * time.Millisecond
	m := testManager(t, Options{Dir: dir, MinSizeBytes: 1024, MaxSizeBytes: 1 << 20, MaxRetries: 3, BackoffBase: backoff})

	start := time.Now()
	_, size, err := m.Download(context.Background(),
		model.Candidate{URL: srv.URL + "/flaky.mp3"}, "flaky song")
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", size, len(payload))
	}
	if gets.Load() != 3 {
		t.Errorf("server saw %d transfer attempts, want 3", gets.Load())
	}
	// The second attempt waits the base delay, the third double it.
	if elapsed < 3*backoff {
		t.Errorf("elapsed %v, want at least %v of accumulated backoff", elapsed, 3*backoff)
	}

	// Failed attempts must not leave partial files behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("destination holds %d files, want exactly the successful one", len(entries))
	}
}

func TestDownload_ExhaustsRetries(t *testing.T) {
	var gets atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		if r.Method == http.MethodHead {
			return
		}
		gets.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := testManager(t, Options{MinSizeBytes: 1, MaxSizeBytes: 1 << 20, MaxRetries: 3})

	_, _, err := m.Download(context.Background(),
		model.Candidate{URL: srv.URL + "/dead.mp3"}, "name")
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("err = %v, want ErrRetriesExhausted", err)
	}
	if gets.Load() != 3 {
		t.Errorf("server saw %d attempts, want 3", gets.Load())
	}
}

func TestDownload_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		if r.Method == http.MethodHead {
			return
		}
		// Fail the first attempt and cancel before the retry sleeps.
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := testManager(t, Options{
		MinSizeBytes: 1,
		MaxSizeBytes: 1 << 20,
		MaxRetries:   3,
		BackoffBase:  time.Minute, // a missed cancellation check would hang here
		Dir:          t.TempDir(),
	})

	done := make(chan error, 1)
	go func() {
		_, _, err := m.Download(ctx, model.Candidate{URL: srv.URL + "/x.mp3"}, "name")
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Download did not observe cancellation before backoff sleep")
	}
}

func TestDownload_UnprobeableHostStillTransfers(t *testing.T) {
	payload := strings.Repeat("c", 4096)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	m := testManager(t, Options{MinSizeBytes: 1024, MaxSizeBytes: 1 << 20, MaxRetries: 3})

	_, size, err := m.Download(context.Background(),
		model.Candidate{URL: srv.URL + "/songs/head-hostile.mp3"}, "head hostile")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", size, len(payload))
	}
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		contentType string
		url         string
		want        string
	}{
		{"audio/mpeg", "https://example.com/x", ".mp3"},
		{"audio/mp4", "https://example.com/x", ".m4a"},
		{"", "https://example.com/track.m4a", ".m4a"},
		{"", "https://example.com/track.mp3?dl=1", ".mp3"},
		{"application/octet-stream", "https://example.com/track", ".mp3"},
	}

	for _, tt := range tests {
		if got := fileExtension(tt.contentType, tt.url); got != tt.want {
			t.Errorf("fileExtension(%q, %q) = %q, want %q", tt.contentType, tt.url, got, tt.want)
		}
	}
}
