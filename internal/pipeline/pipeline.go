package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sonicsync/sonicsync/internal/archive"
	"github.com/sonicsync/sonicsync/internal/audio"
	"github.com/sonicsync/sonicsync/internal/download"
	httpx "github.com/sonicsync/sonicsync/internal/http"
	ioutils "github.com/sonicsync/sonicsync/internal/io"
	"github.com/sonicsync/sonicsync/internal/metrics"
	"github.com/sonicsync/sonicsync/internal/model"
	"github.com/sonicsync/sonicsync/internal/search"
)

var (
	// ErrNoTracks means Resolve was handed an empty playlist.
	ErrNoTracks = errors.New("pipeline: no tracks to resolve")

	// ErrTooManyTracks means the playlist exceeds the configured cap.
	ErrTooManyTracks = errors.New("pipeline: playlist exceeds maximum size")
)

// ProgressEvent reports a per-track state change.
type ProgressEvent struct {
	// Index is the track's position in the requested playlist.
	Index int

	// Track is the descriptor the event belongs to.
	Track model.TrackDescriptor

	// State is the state the track just entered.
	State model.TrackState

	// Message carries optional human-readable detail.
	Message string
}

// Downloader fetches one validated candidate to disk.
type Downloader interface {
	Download(ctx context.Context, candidate model.Candidate, preferredName string) (string, int64, error)
}

// Ranker picks the best candidate for a query.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []model.Candidate) (model.RankedMatch, error)
}

// Options configure a Pipeline.
type Options struct {
	// DestDir is where downloaded files and the archive land.
	DestDir string

	// Workers bounds concurrent track resolutions.
	Workers int

	// MaxPlaylistSize caps accepted playlist length. Zero means no cap.
	MaxPlaylistSize int

	// CreateArchive packages successful downloads into a zip.
	CreateArchive bool

	// CreatePlaylist adds an M3U manifest to the archive.
	CreatePlaylist bool

	// M3UExtended adds #EXTINF metadata lines to the manifest.
	M3UExtended bool

	// CoverArtMaxSize bounds embedded artwork dimensions in pixels.
	CoverArtMaxSize int

	// OnProgress, when non-nil, receives per-track state transitions.
	// Called from worker goroutines; the callback must be safe for
	// concurrent use.
	OnProgress func(ProgressEvent)
}

// Pipeline resolves track descriptors into downloaded, tagged and
// packaged audio files.
type Pipeline struct {
	sources    []search.Source
	normalizer *search.Normalizer
	ranker     Ranker
	downloader Downloader
	tagger     *audio.Tagger
	playlist   *audio.PlaylistCreator
	builder    *archive.Builder
	artClient  *httpx.Client
	images     *ioutils.ImageService
	opts       Options
	logger     *zap.Logger

	artMu    sync.Mutex
	artCache map[string][]byte
}

// New creates a Pipeline. artClient may be nil to disable artwork
// fetching.
func New(
	sources []search.Source,
	ranker Ranker,
	downloader Downloader,
	tagger *audio.Tagger,
	artClient *httpx.Client,
	opts Options,
	logger *zap.Logger,
) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		sources:    sources,
		normalizer: search.NewNormalizer(),
		ranker:     ranker,
		downloader: downloader,
		tagger:     tagger,
		playlist:   audio.NewPlaylistCreator(opts.M3UExtended),
		builder:    archive.NewBuilder(opts.DestDir, logger),
		artClient:  artClient,
		images:     ioutils.NewImageService(),
		opts:       opts,
		logger:     logger,
		artCache:   make(map[string][]byte),
	}
}

// Resolve runs the full pipeline over the playlist and returns a
// summary with one result per input track, in input order.
//
// The only fatal failures are an empty playlist, a playlist over the
// configured cap, and an unusable destination directory. Everything
// else is recorded per track.
func (p *Pipeline) Resolve(ctx context.Context, tracks []model.TrackDescriptor) (*model.PipelineSummary, error) {
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	if p.opts.MaxPlaylistSize > 0 && len(tracks) > p.opts.MaxPlaylistSize {
		return nil, fmt.Errorf("%w: %d tracks, cap %d", ErrTooManyTracks, len(tracks), p.opts.MaxPlaylistSize)
	}
	if err := ioutils.EnsureDir(p.opts.DestDir); err != nil {
		return nil, fmt.Errorf("destination directory: %w", err)
	}

	start := time.Now()
	results := make([]model.DownloadResult, len(tracks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, track := range tracks {
		g.Go(func() error {
			results[i] = p.resolveTrack(gctx, i, track)
			return nil
		})
	}
	g.Wait()

	summary := &model.PipelineSummary{
		Attempted: len(tracks),
		Results:   results,
	}

	var files []string
	for _, res := range results {
		if res.Succeeded() {
			files = append(files, res.FilePath)
		}
		metrics.TracksResolvedTotal.WithLabelValues(res.Reason.String()).Inc()
	}

	if p.opts.CreateArchive && len(files) > 0 {
		manifestName, manifest := "", ""
		if p.opts.CreatePlaylist {
			manifestName = "playlist.m3u"
			manifest = p.playlist.CreatePlaylist(results)
		}

		built, err := p.builder.Build(files, manifestName, manifest)
		if err != nil {
			p.logger.Error("archive build failed", zap.Error(err))
		} else {
			summary.ArchivePath = built.Path
			// A file that vanished between download and packaging counts
			// as a failure for the summary.
			lost := make(map[string]bool, len(built.Skipped))
			for _, s := range built.Skipped {
				lost[s] = true
			}
			for idx := range results {
				if results[idx].Succeeded() && lost[results[idx].FilePath] {
					results[idx].FilePath = ""
					results[idx].Reason = model.ReasonDownloadExhausted
					results[idx].Err = errors.New("file vanished before packaging")
				}
			}
		}
	}

	for _, res := range results {
		if res.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.Elapsed = time.Since(start)

	p.logger.Info("playlist resolution complete",
		zap.Int("attempted", summary.Attempted),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// resolveTrack drives one track through the state machine. Never
// returns an error; every outcome lands in the result.
func (p *Pipeline) resolveTrack(ctx context.Context, index int, track model.TrackDescriptor) model.DownloadResult {
	res := model.DownloadResult{Track: track, Index: index}

	p.emit(index, track, model.StatePending, "")

	if err := ctx.Err(); err != nil {
		return p.fail(res, model.ReasonCancelled, err)
	}

	// Search.
	p.emit(index, track, model.StateSearching, "")
	variants := p.normalizer.Variants(track)
	candidates, err := search.FindCandidates(ctx, p.sources, variants, search.NewFilter(), p.logger)
	if err != nil {
		if ctx.Err() != nil {
			return p.fail(res, model.ReasonCancelled, ctx.Err())
		}
		return p.fail(res, model.ReasonSearchExhausted, err)
	}

	// Rank.
	p.emit(index, track, model.StateRanking, fmt.Sprintf("%d candidates", len(candidates)))
	match, err := p.ranker.Rank(ctx, track.Query(), candidates)
	if err != nil {
		if ctx.Err() != nil {
			return p.fail(res, model.ReasonCancelled, ctx.Err())
		}
		// An empty candidate set cannot reach here; treat any other
		// ranker failure as search exhaustion for the track.
		return p.fail(res, model.ReasonSearchExhausted, err)
	}

	p.logger.Debug("candidate selected",
		zap.Int("index", index),
		zap.String("url", match.Candidate.URL),
		zap.Float64("score", match.Score),
		zap.String("method", match.Method.String()),
	)

	// Download.
	p.emit(index, track, model.StateDownloading, match.Candidate.URL)
	name := fmt.Sprintf("%02d %s - %s", index+1, track.Title, track.Artist)
	filePath, size, err := p.downloader.Download(ctx, match.Candidate, name)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return p.fail(res, model.ReasonCancelled, ctx.Err())
		case errors.Is(err, download.ErrInvalidContent), errors.Is(err, download.ErrSizeOutOfRange):
			return p.fail(res, model.ReasonDownloadRejected, err)
		default:
			return p.fail(res, model.ReasonDownloadExhausted, err)
		}
	}

	res.FilePath = filePath
	res.SizeBytes = size

	// Tagging is best effort.
	if p.tagger != nil {
		artwork := p.fetchArtwork(ctx, track.ArtworkURL)
		if err := p.tagger.SaveTags(filePath, track, index+1, artwork); err != nil {
			p.logger.Warn("tagging failed",
				zap.String("path", filePath), zap.Error(err))
		}
	}

	p.emit(index, track, model.StateSucceeded, filePath)
	return res
}

func (p *Pipeline) fail(res model.DownloadResult, reason model.FailureReason, err error) model.DownloadResult {
	res.Reason = reason
	res.Err = err
	p.emit(res.Index, res.Track, model.StateFailed, reason.String())
	p.logger.Debug("track failed",
		zap.Int("index", res.Index),
		zap.String("title", res.Track.Title),
		zap.String("reason", reason.String()),
		zap.Error(err),
	)
	return res
}

func (p *Pipeline) emit(index int, track model.TrackDescriptor, state model.TrackState, msg string) {
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(ProgressEvent{Index: index, Track: track, State: state, Message: msg})
	}
}

// fetchArtwork downloads and normalizes cover art, memoizing per URL so
// a playlist sharing one album cover fetches it once.
func (p *Pipeline) fetchArtwork(ctx context.Context, artworkURL string) []byte {
	if artworkURL == "" || p.artClient == nil {
		return nil
	}

	p.artMu.Lock()
	cached, ok := p.artCache[artworkURL]
	p.artMu.Unlock()
	if ok {
		return cached
	}

	data, err := p.artClient.Get(ctx, artworkURL)
	if err != nil {
		p.logger.Debug("artwork fetch failed",
			zap.String("url", artworkURL), zap.Error(err))
		return nil
	}

	jpeg, err := p.images.PrepareCoverArt(ctx, data, p.opts.CoverArtMaxSize)
	if err != nil {
		p.logger.Debug("artwork conversion failed",
			zap.String("url", artworkURL), zap.Error(err))
		return nil
	}

	p.artMu.Lock()
	p.artCache[artworkURL] = jpeg
	p.artMu.Unlock()
	return jpeg
}
