package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sonicsync/sonicsync/internal/app"
	"github.com/sonicsync/sonicsync/internal/config"
	"github.com/sonicsync/sonicsync/internal/logger"
	"github.com/sonicsync/sonicsync/internal/metrics"
	"github.com/sonicsync/sonicsync/internal/server"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	portFlag := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			panic("failed to load config: " + err.Error())
		}
	}
	if *portFlag > 0 {
		settings.HTTPPort = *portFlag
	}

	log, err := logger.New(settings.Environment, settings.LogLevel)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	metrics.Register()

	provider := app.BuildSpotify(log)
	if provider == nil {
		log.Fatal("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set")
	}

	resolver := app.BuildPipeline(settings, log, nil)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.HTTPPort),
		Handler:           server.NewServer(provider, resolver, settings.DownloadsPath, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting HTTP server",
		zap.Int("port", settings.HTTPPort),
		zap.String("env", settings.Environment),
		zap.String("downloads_path", settings.DownloadsPath),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal("server failed", zap.Error(err))
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
