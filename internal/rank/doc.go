// Package rank orders search candidates against the track query.
// Semantic scoring over embeddings is preferred; a lexical token
// overlap score takes over whenever embeddings are unavailable, so
// ranking itself never fails a track.
package rank
