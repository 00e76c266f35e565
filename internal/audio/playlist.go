package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sonicsync/sonicsync/internal/model"
)

// PlaylistCreator generates the M3U manifest packaged alongside the
// audio files in the delivery archive.
//
// Entry paths are relative (just the file name), since the manifest
// lives next to the tracks inside the archive.
type PlaylistCreator struct {
	extended bool // include #EXTINF lines with duration/title
}

// NewPlaylistCreator creates a PlaylistCreator. extended adds #EXTINF
// metadata lines before each entry.
func NewPlaylistCreator(extended bool) *PlaylistCreator {
	return &PlaylistCreator{extended: extended}
}

// CreatePlaylist generates M3U content for the successful results, in
// input order. Failed results and results without a file are skipped.
//
// Example output:
//
//	#EXTM3U
//	#EXTINF:233,Ed Sheeran - Shape of You
//	01 Shape of You - Ed Sheeran.mp3
func (p *PlaylistCreator) CreatePlaylist(results []model.DownloadResult) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, res := range results {
		if !res.Succeeded() || res.FilePath == "" {
			continue
		}

		if p.extended {
			seconds := int(res.Track.Duration.Seconds())
			if seconds <= 0 {
				seconds = -1
			}
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s - %s\n",
				seconds, res.Track.Artist, res.Track.Title))
		}

		sb.WriteString(filepath.Base(res.FilePath))
		sb.WriteString("\n")
	}

	return sb.String()
}
