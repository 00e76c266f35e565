package audio

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/sonicsync/sonicsync/internal/model"
)

// TagConfig controls which ID3 frames the Tagger writes.
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are
	// modified; artwork embedding is still governed by EmbedCoverArt.
	ModifyTags bool

	// EmbedCoverArt controls writing the attached picture frame.
	EmbedCoverArt bool

	// Album is the TALB value stamped on every tagged file, typically
	// the playlist name. Empty leaves the frame untouched.
	Album string
}

// DefaultTagConfig returns the default tag configuration.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:    true,
		EmbedCoverArt: true,
	}
}

// Tagger writes ID3 tags to downloaded MP3 files.
//
// Tagging is best effort: the pipeline calls it after a successful
// download and logs failures without failing the track.
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a Tagger. A nil config gets DefaultTagConfig.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes title, artist and track number frames from the
// descriptor onto the MP3 at path, plus cover art when artwork bytes
// are provided. trackNumber is 1-based; zero skips the TRCK frame.
// Non-MP3 files are left untouched.
func (t *Tagger) SaveTags(path string, track model.TrackDescriptor, trackNumber int, artwork []byte) error {
	if !strings.HasSuffix(strings.ToLower(path), ".mp3") {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags: %w", err)
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, track, trackNumber)
	}
	if t.config.EmbedCoverArt && artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, track model.TrackDescriptor, trackNumber int) {
	tag.SetTitle(track.Title)
	tag.SetArtist(track.Artist)

	if t.config.Album != "" {
		tag.SetAlbum(t.config.Album)
	}

	if trackNumber > 0 {
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, fmt.Sprintf("%d", trackNumber))
	}
}

// updateArtwork embeds cover art as an attached picture frame,
// replacing any existing pictures.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
