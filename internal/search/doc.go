// Package search finds download-page candidates for a track on external
// web sources.
//
// A track's descriptor is first expanded into query variants by the
// Normalizer (most-specific cleaning first, the raw "{title} {artist}"
// concatenation always last). Each Source is then tried in priority
// order, the cheap direct-HTTP FastFetch before the browser-automation
// RenderedFetch. Within a source the variants are tried in order,
// short-circuiting on the first variant whose filtered candidate set is
// non-empty. The Filter deduplicates by URL across the whole of one
// track's search and drops low-quality hits.
package search
