package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer zr.Close()

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

func TestBuild_PackagesFilesAndManifest(t *testing.T) {
	src := t.TempDir()
	a := writeTempFile(t, src, "01 Song One.mp3", strings.Repeat("x", 512))
	b := writeTempFile(t, src, "02 Song Two.mp3", strings.Repeat("y", 512))

	builder := NewBuilder(t.TempDir(), zap.NewNop())
	result, err := builder.Build([]string{a, b}, "playlist.m3u", "#EXTM3U\n01 Song One.mp3\n")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(result.Packaged) != 2 || len(result.Skipped) != 0 {
		t.Fatalf("packaged %d skipped %d, want 2 and 0", len(result.Packaged), len(result.Skipped))
	}

	entries := readArchive(t, result.Path)
	if len(entries) != 3 {
		t.Fatalf("archive holds %d entries, want 3", len(entries))
	}
	if entries["01 Song One.mp3"] != strings.Repeat("x", 512) {
		t.Error("first entry contents differ from source file")
	}
	if !strings.HasPrefix(entries["playlist.m3u"], "#EXTM3U") {
		t.Error("manifest entry missing or malformed")
	}
}

func TestBuild_SkipsVanishedFiles(t *testing.T) {
	src := t.TempDir()
	kept := writeTempFile(t, src, "kept.mp3", strings.Repeat("x", 128))
	gone := filepath.Join(src, "gone.mp3")

	builder := NewBuilder(t.TempDir(), zap.NewNop())
	result, err := builder.Build([]string{gone, kept}, "", "")
	if err != nil {
		t.Fatalf("Build must tolerate vanished files: %v", err)
	}

	if len(result.Packaged) != 1 || result.Packaged[0] != kept {
		t.Errorf("Packaged = %v, want only the surviving file", result.Packaged)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != gone {
		t.Errorf("Skipped = %v, want the vanished file", result.Skipped)
	}

	entries := readArchive(t, result.Path)
	if len(entries) != 1 {
		t.Errorf("archive holds %d entries, want 1", len(entries))
	}
}

func TestBuild_ArchiveNameShape(t *testing.T) {
	builder := NewBuilder(t.TempDir(), zap.NewNop())
	result, err := builder.Build(nil, "", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	namePattern := regexp.MustCompile(`^playlist_\d{8}_\d{6}_[0-9a-f]{8}\.zip$`)
	base := filepath.Base(result.Path)
	if !namePattern.MatchString(base) {
		t.Errorf("archive name %q does not match playlist_<ts>_<id>.zip", base)
	}
}

func TestBuild_DistinctNamesAcrossRuns(t *testing.T) {
	builder := NewBuilder(t.TempDir(), zap.NewNop())

	first, err := builder.Build(nil, "", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := builder.Build(nil, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Path == second.Path {
		t.Errorf("two builds produced the same archive path %q", first.Path)
	}
}
