package model

import (
	"fmt"
	"time"
)

// TrackDescriptor identifies one song to resolve.
//
// Descriptors are immutable inputs; their identity is their position in
// the requested playlist. Duplicate descriptors are allowed and resolved
// independently.
//
// Example:
//
//	track := TrackDescriptor{
//	    Title:    "Shape of You",
//	    Artist:   "Ed Sheeran",
//	    Duration: 233 * time.Second,
//	}
type TrackDescriptor struct {
	// Title is the song title as reported by the playlist provider.
	Title string `json:"title"`

	// Artist is the artist name. Multiple artists are joined with ", "
	// by the playlist provider.
	Artist string `json:"artist"`

	// Duration is the track length, or zero when unknown.
	Duration time.Duration `json:"duration"`

	// ArtworkURL is an optional cover image URL supplied by the playlist
	// provider, used for ID3 embedding. Empty means no artwork.
	ArtworkURL string `json:"artwork_url,omitempty"`
}

// Query returns the raw "{title} {artist}" concatenation. This is the
// string candidates are ranked against and the last-resort search variant.
func (t TrackDescriptor) Query() string {
	return fmt.Sprintf("%s %s", t.Title, t.Artist)
}

// TrackState is the per-track resolution state.
//
// Transitions are strictly sequential within one track:
//
//	Pending → Searching → Ranking → Downloading → Succeeded | Failed
//
// Terminal states are final.
type TrackState int

const (
	StatePending TrackState = iota
	StateSearching
	StateRanking
	StateDownloading
	StateSucceeded
	StateFailed
)

// Terminal reports whether the state is final.
func (s TrackState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// String returns a human-readable state name.
func (s TrackState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSearching:
		return "searching"
	case StateRanking:
		return "ranking"
	case StateDownloading:
		return "downloading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureReason classifies why a track's resolution failed. All reasons
// are per-track and non-fatal to the overall run.
type FailureReason int

const (
	// ReasonNone means the track did not fail.
	ReasonNone FailureReason = iota

	// ReasonSearchExhausted means every query variant against every
	// source yielded an empty filtered candidate set.
	ReasonSearchExhausted

	// ReasonDownloadRejected means the chosen candidate failed content
	// or size validation. Validation rejections are never retried.
	ReasonDownloadRejected

	// ReasonDownloadExhausted means transport faults persisted through
	// every retry attempt.
	ReasonDownloadExhausted

	// ReasonCancelled means the pipeline was cancelled before the track
	// reached a terminal state of its own.
	ReasonCancelled
)

// String returns the reason as a stable identifier.
func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonSearchExhausted:
		return "search_exhausted"
	case ReasonDownloadRejected:
		return "download_rejected"
	case ReasonDownloadExhausted:
		return "download_exhausted"
	case ReasonCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DownloadResult is the terminal outcome for one track. Exactly one is
// produced per input descriptor, keyed by Index (the original playlist
// position).
type DownloadResult struct {
	// Track is the descriptor this result belongs to.
	Track TrackDescriptor `json:"track"`

	// Index is the track's position in the requested playlist.
	Index int `json:"index"`

	// FilePath is the validated downloaded file, set only on success.
	FilePath string `json:"file_path,omitempty"`

	// SizeBytes is the downloaded file size, set only on success.
	SizeBytes int64 `json:"size_bytes,omitempty"`

	// Reason is ReasonNone on success, otherwise the failure class.
	Reason FailureReason `json:"reason"`

	// Err carries the underlying error for logging. Nil on success.
	Err error `json:"-"`
}

// Succeeded reports whether the track resolved to a downloaded file.
func (r DownloadResult) Succeeded() bool {
	return r.Reason == ReasonNone && r.FilePath != ""
}

// PipelineSummary aggregates a completed run. It is built only after
// every per-track resolution has reached a terminal state (or was
// abandoned by cancellation).
type PipelineSummary struct {
	// Attempted is the number of tracks dispatched.
	Attempted int `json:"attempted"`

	// Succeeded is the number of tracks that ended in a packaged file.
	Succeeded int `json:"succeeded"`

	// Failed counts tracks with any failure reason, plus files lost
	// between download and archiving.
	Failed int `json:"failed"`

	// ArchivePath is the compressed archive containing every packaged
	// file. Empty when no track succeeded.
	ArchivePath string `json:"archive_path,omitempty"`

	// Results holds one entry per input track, in input order.
	Results []DownloadResult `json:"results"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}
