package audio

import (
	"strings"
	"testing"
	"time"

	"github.com/sonicsync/sonicsync/internal/model"
)

func TestCreatePlaylist_Extended(t *testing.T) {
	results := []model.DownloadResult{
		{
			Track:    model.TrackDescriptor{Title: "Shape of You", Artist: "Ed Sheeran", Duration: 233 * time.Second},
			FilePath: "/downloads/01 Shape of You - Ed Sheeran.mp3",
		},
		{
			Track:  model.TrackDescriptor{Title: "Gone Song", Artist: "Nobody"},
			Reason: model.ReasonSearchExhausted,
		},
		{
			Track:    model.TrackDescriptor{Title: "Believer", Artist: "Imagine Dragons"},
			FilePath: "/downloads/03 Believer - Imagine Dragons.mp3",
		},
	}

	content := NewPlaylistCreator(true).CreatePlaylist(results)
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")

	want := []string{
		"#EXTM3U",
		"#EXTINF:233,Ed Sheeran - Shape of You",
		"01 Shape of You - Ed Sheeran.mp3",
		"#EXTINF:-1,Imagine Dragons - Believer",
		"03 Believer - Imagine Dragons.mp3",
	}
	if len(lines) != len(want) {
		t.Fatalf("playlist has %d lines, want %d:\n%s", len(lines), len(want), content)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Errorf("line %d = %q, want %q", i, lines[i], line)
		}
	}
}

func TestCreatePlaylist_Simple(t *testing.T) {
	results := []model.DownloadResult{
		{
			Track:    model.TrackDescriptor{Title: "Shape of You", Artist: "Ed Sheeran"},
			FilePath: "/downloads/01 Shape of You - Ed Sheeran.mp3",
		},
	}

	content := NewPlaylistCreator(false).CreatePlaylist(results)

	if strings.Contains(content, "#EXT") {
		t.Errorf("simple playlist contains extended directives:\n%s", content)
	}
	if content != "01 Shape of You - Ed Sheeran.mp3\n" {
		t.Errorf("content = %q", content)
	}
}

func TestCreatePlaylist_AllFailed(t *testing.T) {
	results := []model.DownloadResult{
		{Track: model.TrackDescriptor{Title: "Gone", Artist: "X"}, Reason: model.ReasonDownloadExhausted},
	}

	content := NewPlaylistCreator(true).CreatePlaylist(results)
	if content != "#EXTM3U\n" {
		t.Errorf("content = %q, want header only", content)
	}
}
