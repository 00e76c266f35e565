package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sonicsync/sonicsync/internal/model"
	"github.com/sonicsync/sonicsync/internal/mood"
	"github.com/sonicsync/sonicsync/internal/pipeline"
	"github.com/sonicsync/sonicsync/internal/spotify"
)

// PlaylistProvider reads playlist metadata from the upstream provider.
type PlaylistProvider interface {
	PlaylistTracks(ctx context.Context, reference string) ([]model.TrackDescriptor, error)
	PlaylistInfo(ctx context.Context, reference string) (*spotify.PlaylistInfo, error)
}

// Resolver runs the resolution pipeline over a playlist.
type Resolver interface {
	Resolve(ctx context.Context, tracks []model.TrackDescriptor) (*model.PipelineSummary, error)
}

// Server is the HTTP API. Archives are served from destDir by name.
type Server struct {
	provider PlaylistProvider
	resolver Resolver
	destDir  string
	logger   *zap.Logger
}

// NewServer creates a Server.
func NewServer(provider PlaylistProvider, resolver Resolver, destDir string, logger *zap.Logger) *Server {
	return &Server{
		provider: provider,
		resolver: resolver,
		destDir:  destDir,
		logger:   logger,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/download", s.handleDownload)
	})
	r.Get("/download/{name}", s.handleArchive)

	return r
}

type playlistRequest struct {
	PlaylistURL string `json:"playlist_url"`
}

type analyzeResponse struct {
	Info   *spotify.PlaylistInfo   `json:"info"`
	Tracks []model.TrackDescriptor `json:"tracks"`
	Mood   mood.Analysis           `json:"mood"`
}

type downloadResponse struct {
	Summary     *model.PipelineSummary `json:"summary"`
	DownloadURL string                 `json:"download_url,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleAnalyze handles POST /api/analyze: fetch the playlist, report
// its tracks and mood profile without downloading anything.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.decodePlaylistRequest(w, r)
	if !ok {
		return
	}

	info, err := s.provider.PlaylistInfo(r.Context(), ref)
	if err != nil {
		s.handleProviderError(w, err)
		return
	}
	tracks, err := s.provider.PlaylistTracks(r.Context(), ref)
	if err != nil {
		s.handleProviderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Info:   info,
		Tracks: tracks,
		Mood:   mood.Analyze(tracks),
	})
}

// handleDownload handles POST /api/download: fetch the playlist, run
// the full pipeline and report the summary with an archive link.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.decodePlaylistRequest(w, r)
	if !ok {
		return
	}

	tracks, err := s.provider.PlaylistTracks(r.Context(), ref)
	if err != nil {
		s.handleProviderError(w, err)
		return
	}

	summary, err := s.resolver.Resolve(r.Context(), tracks)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrNoTracks), errors.Is(err, pipeline.ErrTooManyTracks):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("pipeline failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "resolution failed")
		}
		return
	}

	resp := downloadResponse{Summary: summary}
	if summary.ArchivePath != "" {
		resp.DownloadURL = "/download/" + filepath.Base(summary.ArchivePath)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleArchive handles GET /download/{name}, serving a built archive.
// Only plain file names inside the destination directory are served.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, "invalid archive name")
		return
	}

	path := filepath.Join(s.destDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "archive not found")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decodePlaylistRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return "", false
	}
	if strings.TrimSpace(req.PlaylistURL) == "" {
		writeError(w, http.StatusBadRequest, "playlist_url is required")
		return "", false
	}
	return req.PlaylistURL, true
}

func (s *Server) handleProviderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, spotify.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, spotify.ErrNotPublic):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("playlist provider failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "playlist provider unavailable")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
