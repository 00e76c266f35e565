package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/sonicsync/sonicsync/internal/metrics"
)

// CachedEmbedder memoizes an inner Embedder in process memory. Within a
// pipeline run many tracks share query text fragments, and the ranker
// embeds the same track query once per candidate set; the cache keeps
// those repeats free.
type CachedEmbedder struct {
	inner Embedder

	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewCachedEmbedder creates a caching decorator over inner.
func NewCachedEmbedder(inner Embedder) *CachedEmbedder {
	return &CachedEmbedder{
		inner:   inner,
		vectors: make(map[string][]float32),
	}
}

// Embed implements Embedder. Failures are not cached, so transient
// provider errors do not poison later lookups.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	c.mu.RLock()
	vec, ok := c.vectors[key]
	c.mu.RUnlock()
	if ok {
		metrics.EmbeddingRequestsTotal.WithLabelValues("cache_hit").Inc()
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	c.mu.Lock()
	c.vectors[key] = vec
	c.mu.Unlock()

	return vec, nil
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
