package search

import (
	"regexp"
	"strings"

	"github.com/sonicsync/sonicsync/internal/model"
)

var (
	// bracketRe matches bracketed/parenthetical segments, which on music
	// listings carry noise like "(Official Video)" or "[OST]".
	bracketRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

	// noiseRe matches stand-alone tokens that hurt search recall.
	noiseRe = regexp.MustCompile(`(?i)\b(original soundtrack|soundtrack|ost|feat|featuring|ft|remix|version|remastered)\b\.?`)

	// punctRe matches everything except letters, digits and spaces.
	punctRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalizer turns a track descriptor into an ordered list of search
// query variants.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Variants returns a non-empty ordered sequence of query strings, most
// aggressively cleaned first. The last variant is always the unmodified
// "{title} {artist}" concatenation; a variant that would be empty after
// trimming is dropped rather than emitted.
func (n *Normalizer) Variants(track model.TrackDescriptor) []string {
	raw := strings.TrimSpace(track.Query())

	var variants []string
	seen := make(map[string]struct{})
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || v == raw {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	// Most aggressive: drop bracketed segments and noise tokens, then
	// strip punctuation.
	add(stripPunctuation(noiseRe.ReplaceAllString(bracketRe.ReplaceAllString(raw, " "), " ")))

	// Punctuation-only cleaning.
	add(stripPunctuation(raw))

	// "<song> by <artist>" titles search better reordered.
	if song, artist, found := strings.Cut(track.Title, " by "); found {
		add(stripPunctuation(song + " " + artist))
	}

	// Last resort: the raw concatenation, always emitted.
	return append(variants, raw)
}

func stripPunctuation(s string) string {
	s = punctRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
