// Package app is the composition root shared by the binaries: it
// assembles the search sources, ranker, downloader and pipeline from
// loaded settings.
package app

import (
	"go.uber.org/zap"

	"github.com/sonicsync/sonicsync/internal/audio"
	"github.com/sonicsync/sonicsync/internal/config"
	"github.com/sonicsync/sonicsync/internal/download"
	"github.com/sonicsync/sonicsync/internal/embedding"
	httpx "github.com/sonicsync/sonicsync/internal/http"
	"github.com/sonicsync/sonicsync/internal/pipeline"
	"github.com/sonicsync/sonicsync/internal/rank"
	"github.com/sonicsync/sonicsync/internal/search"
	"github.com/sonicsync/sonicsync/internal/spotify"
)

// BuildPipeline wires a ready-to-run Pipeline from settings. onProgress
// may be nil.
func BuildPipeline(settings *config.Settings, logger *zap.Logger, onProgress func(pipeline.ProgressEvent)) *pipeline.Pipeline {
	searchClient := httpx.NewClient(settings.UserAgent, settings.SearchTimeout())

	sources := []search.Source{
		search.NewFastFetch(searchClient, settings.SearchBaseURLs, logger),
	}
	if settings.RenderedFetchEnabled && len(settings.SearchBaseURLs) > 0 {
		sources = append(sources, search.NewRenderedFetch(
			settings.SearchBaseURLs[0],
			settings.RenderedSettle(),
			int64(settings.RenderedFetchSlots),
			logger,
		))
	}

	var embedder embedding.Embedder
	if key := config.EmbeddingAPIKey(); key != "" {
		embedder = embedding.NewCachedEmbedder(
			embedding.NewOpenAIEmbedder(key, settings.EmbeddingModel, settings.EmbeddingBaseURL, settings.EmbeddingDimensions, logger))
	} else {
		logger.Info("no embedding API key, ranking lexically")
	}
	ranker := rank.NewRanker(embedder, logger)

	// Transfers get no client-level timeout; a large file legitimately
	// takes minutes. Cancellation comes through the context.
	transferClient := httpx.NewClient(settings.UserAgent, 0)
	downloader := download.NewManager(transferClient, download.Options{
		Dir:          settings.DownloadsPath,
		MinSizeBytes: settings.MinFileSizeBytes,
		MaxSizeBytes: settings.MaxFileSizeBytes,
		MaxRetries:   settings.DownloadMaxRetries,
		BackoffBase:  settings.RetryBackoff(),
	}, logger)

	var tagger *audio.Tagger
	if settings.ModifyTags || settings.EmbedCoverArt {
		tagger = audio.NewTagger(&audio.TagConfig{
			ModifyTags:    settings.ModifyTags,
			EmbedCoverArt: settings.EmbedCoverArt,
		})
	}

	return pipeline.New(
		sources,
		ranker,
		downloader,
		tagger,
		searchClient,
		pipeline.Options{
			DestDir:         settings.DownloadsPath,
			Workers:         settings.Workers,
			MaxPlaylistSize: settings.MaxPlaylistSize,
			CreateArchive:   true,
			CreatePlaylist:  settings.CreatePlaylist,
			M3UExtended:     settings.M3UExtended,
			CoverArtMaxSize: settings.CoverArtMaxSize,
			OnProgress:      onProgress,
		},
		logger,
	)
}

// BuildSpotify creates the playlist provider from environment
// credentials. Returns nil when credentials are absent.
func BuildSpotify(logger *zap.Logger) *spotify.Client {
	id, secret := config.SpotifyCredentials()
	if id == "" || secret == "" {
		return nil
	}
	return spotify.NewClient(id, secret, logger)
}
