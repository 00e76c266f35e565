package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.Workers < 4 || s.Workers > 8 {
		t.Errorf("Workers = %d, want a small constant in [4,8]", s.Workers)
	}
	if s.DownloadMaxRetries != 3 {
		t.Errorf("DownloadMaxRetries = %d, want 3", s.DownloadMaxRetries)
	}
	if s.MinFileSizeBytes != 1<<20 {
		t.Errorf("MinFileSizeBytes = %d, want 1 MiB", s.MinFileSizeBytes)
	}
	if s.MaxFileSizeBytes != 100<<20 {
		t.Errorf("MaxFileSizeBytes = %d, want 100 MiB", s.MaxFileSizeBytes)
	}
	if s.RetryBackoff() != time.Second {
		t.Errorf("RetryBackoff() = %v, want 1s", s.RetryBackoff())
	}
	if s.SearchTimeout() != 15*time.Second {
		t.Errorf("SearchTimeout() = %v, want 15s", s.SearchTimeout())
	}
	if s.RenderedSettle() != 3*time.Second {
		t.Errorf("RenderedSettle() = %v, want 3s", s.RenderedSettle())
	}
	if len(s.SearchBaseURLs) == 0 {
		t.Error("SearchBaseURLs should not be empty")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Workers != DefaultSettings().Workers {
		t.Errorf("missing file should yield defaults, got Workers=%d", s.Workers)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	s := DefaultSettings()
	s.Workers = 4
	s.RenderedFetchEnabled = false
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Workers != 4 {
		t.Errorf("Workers = %d, want 4", loaded.Workers)
	}
	if loaded.RenderedFetchEnabled {
		t.Error("RenderedFetchEnabled should survive the round trip as false")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"workers": 2}`), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Workers != 2 {
		t.Errorf("Workers = %d, want 2", s.Workers)
	}
	if s.DownloadMaxRetries != 3 {
		t.Errorf("unset fields should keep defaults, DownloadMaxRetries = %d", s.DownloadMaxRetries)
	}
}
