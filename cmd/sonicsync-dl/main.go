package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sonicsync/sonicsync/internal/app"
	"github.com/sonicsync/sonicsync/internal/config"
	"github.com/sonicsync/sonicsync/internal/logger"
	"github.com/sonicsync/sonicsync/internal/metrics"
	"github.com/sonicsync/sonicsync/internal/model"
	"github.com/sonicsync/sonicsync/internal/pipeline"
)

func main() {
	var (
		playlistFlag = flag.String("playlist", "", "Spotify playlist URL, URI or ID")
		tracksFlag   = flag.String("tracks", "", "Path to a JSON file of track descriptors (alternative to -playlist)")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		configFlag   = flag.String("config", "", "Path to config file")
		workersFlag  = flag.Int("workers", 0, "Concurrent track resolutions (overrides config)")
		verboseFlag  = flag.Bool("verbose", false, "Show per-track state transitions")
	)

	flag.Parse()

	if *playlistFlag == "" && *tracksFlag == "" && flag.NArg() == 0 {
		fmt.Println("SonicSync - Resolve Spotify playlists into audio files")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  sonicsync-dl -playlist <URL> [options]")
		fmt.Println("  sonicsync-dl -tracks <file.json> [options]")
		fmt.Println("  sonicsync-dl <URL> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: sonicsync-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *outputFlag != "" {
		settings.DownloadsPath = *outputFlag
	}
	if *workersFlag > 0 {
		settings.Workers = *workersFlag
	}

	level := settings.LogLevel
	if *verboseFlag && level == "" {
		level = "debug"
	}
	log, err := logger.New(settings.Environment, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	metrics.Register()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	tracks, err := loadTracks(ctx, log, *playlistFlag, *tracksFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tracks: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🎵 SonicSync")
	fmt.Printf("Resolving %d track(s) into %s\n\n", len(tracks), settings.DownloadsPath)

	p := app.BuildPipeline(settings, log, func(ev pipeline.ProgressEvent) {
		if ev.State.Terminal() {
			mark := "✅"
			if ev.State == model.StateFailed {
				mark = "❌"
			}
			fmt.Printf("%s [%d] %s - %s\n", mark, ev.Index+1, ev.Track.Title, ev.Track.Artist)
			return
		}
		if *verboseFlag {
			fmt.Printf("   [%d] %s: %s\n", ev.Index+1, ev.State, ev.Message)
		}
	})

	summary, err := p.Resolve(ctx, tracks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Done: %d/%d tracks in %s\n",
		summary.Succeeded, summary.Attempted, summary.Elapsed.Round(time.Millisecond))
	for _, res := range summary.Results {
		if !res.Succeeded() {
			fmt.Printf("  failed: %s - %s (%s)\n", res.Track.Title, res.Track.Artist, res.Reason)
		}
	}
	if summary.ArchivePath != "" {
		fmt.Printf("Archive: %s\n", summary.ArchivePath)
	}

	if summary.Succeeded == 0 {
		os.Exit(1)
	}
}

// loadTracks resolves the input into track descriptors, either from a
// local JSON file with [{"title": ..., "artist": ...}] entries or from
// the Spotify API.
func loadTracks(ctx context.Context, log *zap.Logger, playlistRef, tracksPath string) ([]model.TrackDescriptor, error) {
	if tracksPath != "" {
		data, err := os.ReadFile(tracksPath)
		if err != nil {
			return nil, err
		}
		var tracks []model.TrackDescriptor
		if err := json.Unmarshal(data, &tracks); err != nil {
			return nil, fmt.Errorf("parse %s: %w", tracksPath, err)
		}
		return tracks, nil
	}

	ref := playlistRef
	if ref == "" {
		ref = strings.TrimSpace(flag.Arg(0))
	}

	client := app.BuildSpotify(log)
	if client == nil {
		return nil, fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required for playlist input")
	}
	return client.PlaylistTracks(ctx, ref)
}
