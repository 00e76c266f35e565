package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sonicsync/sonicsync/internal/model"
)

// minTitleLen is the shortest trimmed display title worth keeping.
const minTitleLen = 6

// denyTokens are whole words that mark a hit as junk rather than a song.
var denyTokens = map[string]struct{}{
	"ad":            {},
	"ads":           {},
	"promo":         {},
	"sponsored":     {},
	"advertisement": {},
}

// Filter deduplicates and quality-screens raw candidate sets.
//
// A Filter instance is scoped to one track's search: the URL dedup set
// spans every source and query variant tried for that track, so a hit
// returned by both FastFetch and RenderedFetch survives only once.
type Filter struct {
	seen map[string]struct{}
}

// NewFilter creates a Filter with an empty dedup set.
func NewFilter() *Filter {
	return &Filter{seen: make(map[string]struct{})}
}

// Apply returns the candidates that pass, in insertion order of first
// occurrence. Rules, in order: exact-URL dedup, trimmed title length,
// denylisted whole-word tokens.
func (f *Filter) Apply(candidates []model.Candidate) []model.Candidate {
	var kept []model.Candidate
	for _, c := range candidates {
		if _, dup := f.seen[c.URL]; dup {
			continue
		}
		f.seen[c.URL] = struct{}{}

		title := strings.TrimSpace(c.Title)
		if utf8.RuneCountInString(title) < minTitleLen {
			continue
		}
		if containsDenyToken(title) {
			continue
		}

		c.Title = title
		kept = append(kept, c)
	}
	return kept
}

func containsDenyToken(title string) bool {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		if _, bad := denyTokens[w]; bad {
			return true
		}
	}
	return false
}
