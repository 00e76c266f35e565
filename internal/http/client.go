package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client wraps HTTP operations with sonicsync-specific configuration.
//
// Client provides:
//   - A declared User-Agent header on every request
//   - Timeout handling
//   - Metadata-only probes via HEAD requests
//   - Streaming downloads with an enforced byte ceiling
//
// Example usage:
//
//	client := NewClient(userAgent, 15*time.Second)
//
//	// Fetch a search results page
//	html, err := client.GetString(ctx, "https://example.dev/?s=query")
//
//	// Probe a download link before committing to it
//	probe, err := client.Probe(ctx, mp3URL)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client with the given identity and
// per-request timeout. A zero timeout means no client-level timeout;
// callers then bound requests through their context.
func NewClient(userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Probe describes the metadata a server declared for a URL.
type Probe struct {
	// ContentType is the declared Content-Type header, lowercased.
	ContentType string

	// ContentLength is the declared size in bytes, or -1 when the
	// server did not declare one.
	ContentLength int64
}

// IsAudio reports whether the declared content type indicates audio.
func (p Probe) IsAudio() bool {
	return strings.Contains(p.ContentType, "audio") ||
		strings.Contains(p.ContentType, "mpeg") ||
		strings.Contains(p.ContentType, "mp3") ||
		strings.Contains(p.ContentType, "mp4")
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the response body as a
// string. Convenience wrapper around Get for fetching HTML.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DoProbe issues a HEAD request and returns the declared metadata.
//
// This is used to validate a candidate before the full transfer: the
// caller checks Probe.IsAudio and the declared length against its size
// bounds without downloading a byte of payload.
func (c *Client) DoProbe(ctx context.Context, url string) (Probe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Probe{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Probe{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Probe{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return Probe{
		ContentType:   strings.ToLower(resp.Header.Get("Content-Type")),
		ContentLength: resp.ContentLength,
	}, nil
}

// Download streams the response body for url into w, returning the
// number of bytes written.
//
// When maxBytes is positive and the stream exceeds it, the download is
// aborted with an error; the caller owns cleanup of whatever was
// written. A non-200 status is returned as an error before any byte is
// written.
func (c *Client) Download(ctx context.Context, url string, w io.Writer, maxBytes int64) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}

	written, err := io.Copy(w, body)
	if err != nil {
		return written, err
	}
	if maxBytes > 0 && written > maxBytes {
		return written, fmt.Errorf("response exceeded %d bytes", maxBytes)
	}

	return written, nil
}
