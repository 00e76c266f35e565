package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// Pipeline settings
	DownloadsPath      string `json:"downloads_path"`
	Workers            int    `json:"workers"`
	MaxPlaylistSize    int    `json:"max_playlist_size"`
	DownloadMaxRetries int    `json:"download_max_retries"`
	RetryBackoffMillis int    `json:"retry_backoff_millis"`
	MinFileSizeBytes   int64  `json:"min_file_size_bytes"`
	MaxFileSizeBytes   int64  `json:"max_file_size_bytes"`

	// Search settings
	SearchBaseURLs        []string `json:"search_base_urls"`
	SearchTimeoutSeconds  int      `json:"search_timeout_seconds"`
	RenderedFetchEnabled  bool     `json:"rendered_fetch_enabled"`
	RenderedFetchSlots    int      `json:"rendered_fetch_slots"`
	RenderedSettleSeconds int      `json:"rendered_settle_seconds"`
	UserAgent             string   `json:"user_agent"`

	// Tag settings
	ModifyTags      bool `json:"modify_tags"`
	EmbedCoverArt   bool `json:"embed_cover_art"`
	CoverArtMaxSize int  `json:"cover_art_max_size"`
	CreatePlaylist  bool `json:"create_playlist"`
	M3UExtended     bool `json:"m3u_extended"`

	// Embedding settings. The API key is read from the environment
	// (SONICSYNC_OPENAI_API_KEY, falling back to OPENAI_API_KEY), never
	// from this file.
	EmbeddingModel      string `json:"embedding_model"`
	EmbeddingBaseURL    string `json:"embedding_base_url"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`

	// Server settings
	HTTPPort    int    `json:"http_port"`
	Environment string `json:"environment"` // dev, prod
	LogLevel    string `json:"log_level"`   // debug, info, warn, error
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:      filepath.Join(homeDir, "Music", "SonicSync"),
		Workers:            6,
		MaxPlaylistSize:    500,
		DownloadMaxRetries: 3,
		RetryBackoffMillis: 1000,
		MinFileSizeBytes:   1 << 20,   // 1 MiB
		MaxFileSizeBytes:   100 << 20, // 100 MiB

		SearchBaseURLs: []string{
			"https://masstamilan.dev",
			"https://www.masstamilan.com",
		},
		SearchTimeoutSeconds:  15,
		RenderedFetchEnabled:  true,
		RenderedFetchSlots:    2,
		RenderedSettleSeconds: 3,
		UserAgent:             "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",

		ModifyTags:      true,
		EmbedCoverArt:   true,
		CoverArtMaxSize: 1000,
		CreatePlaylist:  true,
		M3UExtended:     true,

		EmbeddingModel: "text-embedding-3-small",

		HTTPPort:    8080,
		Environment: "dev",
	}
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// RetryBackoff returns the base backoff duration between download
// attempts. The wait after attempt n is RetryBackoff << n.
func (s *Settings) RetryBackoff() time.Duration {
	if s.RetryBackoffMillis <= 0 {
		return time.Second
	}
	return time.Duration(s.RetryBackoffMillis) * time.Millisecond
}

// SearchTimeout returns the per-request timeout for FastFetch searches.
func (s *Settings) SearchTimeout() time.Duration {
	if s.SearchTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.SearchTimeoutSeconds) * time.Second
}

// RenderedSettle returns the fixed delay RenderedFetch waits after
// navigation for client-side script to run.
func (s *Settings) RenderedSettle() time.Duration {
	if s.RenderedSettleSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(s.RenderedSettleSeconds) * time.Second
}

// EmbeddingAPIKey returns the embedding provider key from the
// environment, or empty when semantic ranking should be disabled.
func EmbeddingAPIKey() string {
	if key := os.Getenv("SONICSYNC_OPENAI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

// SpotifyCredentials returns the Spotify client id and secret from the
// environment. Either may be empty when playlist ingestion is unused.
func SpotifyCredentials() (id, secret string) {
	return os.Getenv("SPOTIFY_CLIENT_ID"), os.Getenv("SPOTIFY_CLIENT_SECRET")
}
