// Package pipeline orchestrates playlist resolution end to end: query
// normalization, candidate search, ranking, validated download, tagging
// and final packaging. Tracks resolve concurrently under a worker
// bound; one track's failure never cascades to another.
package pipeline
