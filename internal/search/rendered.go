package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sonicsync/sonicsync/internal/model"
)

// RenderedFetch is the browser-automation fallback strategy. It drives a
// headless Chrome session so client-side script runs before the page is
// parsed, then waits a fixed settle delay after navigation.
//
// Browser sessions are expensive (hundreds of MB each), so all
// RenderedFetch instances in the process share a small slot pool that is
// separate from the pipeline's track-level worker bound.
type RenderedFetch struct {
	baseURL string
	settle  time.Duration
	slots   *semaphore.Weighted
	logger  *zap.Logger
}

// browserSlots is the process-wide session pool shared by every
// RenderedFetch. Sized once by the first constructor call.
var browserSlots *semaphore.Weighted

// NewRenderedFetch creates a RenderedFetch against one base URL with the
// given post-navigation settle delay. maxSessions bounds concurrent
// browser sessions process-wide; only the first call sizes the pool.
func NewRenderedFetch(baseURL string, settle time.Duration, maxSessions int64, logger *zap.Logger) *RenderedFetch {
	if browserSlots == nil {
		if maxSessions < 1 {
			maxSessions = 1
		}
		browserSlots = semaphore.NewWeighted(maxSessions)
	}
	return &RenderedFetch{
		baseURL: baseURL,
		settle:  settle,
		slots:   browserSlots,
		logger:  logger,
	}
}

// Backend implements Source.
func (r *RenderedFetch) Backend() model.SourceBackend {
	return model.BackendRenderedFetch
}

// Search implements Source. Blocks until a browser slot is free or the
// context is cancelled.
func (r *RenderedFetch) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	if err := r.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.slots.Release(1)

	searchURL := fmt.Sprintf("%s/?s=%s", strings.TrimRight(r.baseURL, "/"), url.QueryEscape(query))

	page, err := r.renderPage(ctx, searchURL)
	if err != nil {
		return nil, classifyFetchErr(err)
	}

	candidates, err := extractCandidates(page, r.baseURL, model.BackendRenderedFetch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoResults
	}
	return candidates, nil
}

// renderPage navigates a fresh headless session to pageURL, waits for
// the settle delay, and returns the rendered document markup.
func (r *RenderedFetch) renderPage(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	r.logger.Debug("rendering search page", zap.String("url", pageURL))

	var page string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &page),
	)
	if err != nil {
		return "", err
	}
	return page, nil
}
