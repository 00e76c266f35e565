package search

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sonicsync/sonicsync/internal/metrics"
	"github.com/sonicsync/sonicsync/internal/model"
)

var (
	// ErrNoResults means the search completed but yielded no candidates.
	ErrNoResults = errors.New("search: no results")

	// ErrTimeout means the search exceeded its time budget.
	ErrTimeout = errors.New("search: timed out")

	// ErrTransport means the search failed below the HTTP layer or with
	// a non-success status.
	ErrTransport = errors.New("search: transport error")
)

// Source is one external search backend.
type Source interface {
	// Backend identifies the strategy for logging and candidate tagging.
	Backend() model.SourceBackend

	// Search runs one query and returns raw candidate hits. Fails with
	// ErrNoResults, ErrTimeout or ErrTransport (possibly wrapped).
	Search(ctx context.Context, query string) ([]model.Candidate, error)
}

// FindCandidates tries the sources in priority order and, within each
// source, the query variants in order, short-circuiting on the first
// variant whose filtered set is non-empty. Later sources run only when
// every variant against every earlier source came up empty.
//
// Returns ErrNoResults when every combination is exhausted, or the
// context error when cancelled mid-search.
func FindCandidates(ctx context.Context, sources []Source, variants []string, filter *Filter, logger *zap.Logger) ([]model.Candidate, error) {
	for _, src := range sources {
		if src.Backend() == model.BackendRenderedFetch {
			metrics.RenderedFallbacksTotal.Inc()
		}
		backend := src.Backend().String()

		for _, query := range variants {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			hits, err := src.Search(ctx, query)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				metrics.SearchAttemptsTotal.WithLabelValues(backend, "error").Inc()
				logger.Debug("search attempt failed",
					zap.String("backend", backend),
					zap.String("query", query),
					zap.Error(err),
				)
				continue
			}

			kept := filter.Apply(hits)
			if len(kept) == 0 {
				metrics.SearchAttemptsTotal.WithLabelValues(backend, "empty").Inc()
				continue
			}

			metrics.SearchAttemptsTotal.WithLabelValues(backend, "hit").Inc()
			logger.Debug("search attempt succeeded",
				zap.String("backend", backend),
				zap.String("query", query),
				zap.Int("candidates", len(kept)),
			)
			return kept, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoResults
}

// candidateSelectors are the markup shapes song links appear under on
// the supported listing sites.
var candidateSelectors = []string{
	`a[href*="/songs/"]`,
	`a[href*="/movie/"]`,
	`a[href*="/album/"]`,
	".entry-title a",
	".post-title a",
	"h2 a",
	"h3 a",
}

// hrefKeywords narrow selector matches to actual song/album pages.
var hrefKeywords = []string{"/songs/", "/movie/", "/album/"}

// extractCandidates parses a search results page and pulls out candidate
// hits. Relative hrefs are resolved against base. Used by both fetch
// strategies so a rendered page and a direct fetch parse identically.
func extractCandidates(html, base string, backend model.SourceBackend) ([]model.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	var candidates []model.Candidate
	for _, selector := range candidateSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || !hrefLooksLikeSong(href) {
				return
			}

			ref, err := url.Parse(href)
			if err != nil {
				return
			}

			candidates = append(candidates, model.Candidate{
				Title:   strings.TrimSpace(sel.Text()),
				URL:     baseURL.ResolveReference(ref).String(),
				Backend: backend,
			})
		})
	}

	return candidates, nil
}

func hrefLooksLikeSong(href string) bool {
	lower := strings.ToLower(href)
	for _, kw := range hrefKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
