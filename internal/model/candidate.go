package model

// SourceBackend identifies which search backend produced a candidate.
type SourceBackend int

const (
	// BackendFastFetch is the direct HTTP search strategy.
	BackendFastFetch SourceBackend = iota

	// BackendRenderedFetch is the browser-automation fallback strategy.
	BackendRenderedFetch
)

// String returns the backend as a stable identifier.
func (b SourceBackend) String() string {
	switch b {
	case BackendFastFetch:
		return "fastfetch"
	case BackendRenderedFetch:
		return "renderedfetch"
	default:
		return "unknown"
	}
}

// Candidate is a single external search hit possibly matching a track.
// Candidates exist only while one track is being resolved.
type Candidate struct {
	// Title is the display title text of the hit.
	Title string `json:"title"`

	// URL is the retrieval URL the hit points at.
	URL string `json:"url"`

	// Backend is the source strategy that produced the hit.
	Backend SourceBackend `json:"backend"`
}

// RankMethod identifies how a candidate was scored.
type RankMethod int

const (
	// MethodSemantic scores by cosine similarity of embeddings.
	MethodSemantic RankMethod = iota

	// MethodLexical scores by token-set intersection-over-union. Used
	// when no embedder is available or embedding fails.
	MethodLexical
)

// String returns the method as a stable identifier.
func (m RankMethod) String() string {
	switch m {
	case MethodSemantic:
		return "semantic"
	case MethodLexical:
		return "lexical"
	default:
		return "unknown"
	}
}

// RankedMatch is the ranker's selection for one track.
//
// Score is in [0,1] and is comparable only against scores produced by
// the same method in the same run.
type RankedMatch struct {
	Candidate Candidate  `json:"candidate"`
	Score     float64    `json:"score"`
	Method    RankMethod `json:"method"`
}
