package rank

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sonicsync/sonicsync/internal/embedding"
	"github.com/sonicsync/sonicsync/internal/model"
)

// ErrNoCandidates means Rank was handed an empty candidate set.
var ErrNoCandidates = errors.New("rank: no candidates")

// Ranker scores candidates against a query and picks the best one.
// A nil embedder is valid and forces lexical scoring for every track.
type Ranker struct {
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewRanker creates a Ranker. embedder may be nil when no provider is
// configured.
func NewRanker(embedder embedding.Embedder, logger *zap.Logger) *Ranker {
	return &Ranker{embedder: embedder, logger: logger}
}

// Rank returns the best candidate for the query. Semantic scoring is
// attempted first; if the query or any candidate fails to embed, the
// whole set is rescored lexically so every candidate competes under the
// same method. Ties keep the earliest candidate, preserving the source
// ordering as a relevance prior.
//
// The only failure modes are an empty candidate set and a cancelled
// context.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []model.Candidate) (model.RankedMatch, error) {
	if len(candidates) == 0 {
		return model.RankedMatch{}, ErrNoCandidates
	}
	if err := ctx.Err(); err != nil {
		return model.RankedMatch{}, err
	}

	if r.embedder != nil {
		match, err := r.rankSemantic(ctx, query, candidates)
		if err == nil {
			return match, nil
		}
		if ctx.Err() != nil {
			return model.RankedMatch{}, ctx.Err()
		}
		r.logger.Debug("semantic ranking unavailable, scoring lexically",
			zap.String("query", query), zap.Error(err))
	}

	return r.rankLexical(query, candidates), nil
}

func (r *Ranker) rankSemantic(ctx context.Context, query string, candidates []model.Candidate) (model.RankedMatch, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return model.RankedMatch{}, err
	}

	best := model.RankedMatch{Candidate: candidates[0], Score: -1, Method: model.MethodSemantic}
	for _, c := range candidates {
		vec, err := r.embedder.Embed(ctx, c.Title)
		if err != nil {
			return model.RankedMatch{}, err
		}
		score := clampedCosine(queryVec, vec)
		if score > best.Score {
			best.Candidate = c
			best.Score = score
		}
	}
	return best, nil
}

func (r *Ranker) rankLexical(query string, candidates []model.Candidate) model.RankedMatch {
	queryTokens := tokenSet(query)

	best := model.RankedMatch{Candidate: candidates[0], Score: -1, Method: model.MethodLexical}
	for _, c := range candidates {
		score := overlapScore(queryTokens, tokenSet(c.Title))
		if score > best.Score {
			best.Candidate = c
			best.Score = score
		}
	}
	return best
}

// clampedCosine is cosine similarity clamped into [0, 1]. Mismatched or
// degenerate vectors score zero rather than erroring.
func clampedCosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}

// overlapScore is the intersection-over-union of the two token sets.
func overlapScore(query, title map[string]struct{}) float64 {
	if len(query) == 0 || len(title) == 0 {
		return 0
	}

	inter := 0
	for tok := range query {
		if _, ok := title[tok]; ok {
			inter++
		}
	}
	union := len(query) + len(title) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}
