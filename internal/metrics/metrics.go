// Package metrics defines the Prometheus collectors for the resolution
// pipeline. Collectors are registered explicitly via Register, never in
// an init function.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SearchAttemptsTotal counts individual source/variant search
	// attempts by backend and result (hit, empty, error).
	SearchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonicsync_search_attempts_total",
			Help: "Search attempts by backend and result.",
		},
		[]string{"backend", "result"},
	)

	// RenderedFallbacksTotal counts tracks that had to fall through to
	// the browser-automation backend.
	RenderedFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sonicsync_rendered_fallbacks_total",
			Help: "Tracks that fell back to the rendered-fetch backend.",
		},
	)

	// TracksResolvedTotal counts terminal track outcomes.
	TracksResolvedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonicsync_tracks_resolved_total",
			Help: "Terminal per-track outcomes by reason (none = success).",
		},
		[]string{"reason"},
	)

	// DownloadAttemptsTotal counts download transfer attempts by result
	// (success, transport_error, rejected).
	DownloadAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonicsync_download_attempts_total",
			Help: "Download transfer attempts by result.",
		},
		[]string{"result"},
	)

	// EmbeddingRequestsTotal counts embedding provider calls by result
	// (success, error, cache_hit).
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonicsync_embedding_requests_total",
			Help: "Embedding requests by result.",
		},
		[]string{"result"},
	)

	// ArchiveFilesTotal counts files packaged or lost at archive time.
	ArchiveFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonicsync_archive_files_total",
			Help: "Files packaged into or skipped from archives.",
		},
		[]string{"result"},
	)
)

// Register registers all pipeline collectors with the default registry.
// Call once at process start.
func Register() {
	prometheus.MustRegister(
		SearchAttemptsTotal,
		RenderedFallbacksTotal,
		TracksResolvedTotal,
		DownloadAttemptsTotal,
		EmbeddingRequestsTotal,
		ArchiveFilesTotal,
	)
}
