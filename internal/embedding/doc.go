// Package embedding provides text embedding providers for semantic
// candidate ranking. The OpenAI-compatible provider is the real
// implementation; a caching decorator keeps repeated queries from
// burning tokens within one pipeline run.
package embedding
