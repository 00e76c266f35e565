package main

import (
	"fmt"
	"os"

	"github.com/sonicsync/sonicsync/internal/app"
	"github.com/sonicsync/sonicsync/internal/config"
	"github.com/sonicsync/sonicsync/internal/logger"
	"github.com/sonicsync/sonicsync/internal/metrics"
	"github.com/sonicsync/sonicsync/internal/pipeline"
	"github.com/sonicsync/sonicsync/internal/tui"
)

func main() {
	settings := config.DefaultSettings()

	// The terminal belongs to the TUI; keep zap quiet unless asked.
	level := settings.LogLevel
	if level == "" {
		level = "error"
	}
	log, err := logger.New(settings.Environment, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	metrics.Register()

	provider := app.BuildSpotify(log)
	if provider == nil {
		fmt.Fprintln(os.Stderr, "SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set")
		os.Exit(1)
	}

	deps := tui.Deps{
		Provider: provider,
		NewResolver: func(onProgress func(pipeline.ProgressEvent)) tui.Resolver {
			return app.BuildPipeline(settings, log, onProgress)
		},
		DestDir: settings.DownloadsPath,
	}

	if err := tui.Run(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
