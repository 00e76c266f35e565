// Package audio handles post-download audio file processing: ID3 tag
// writing for MP3 files and playlist manifest generation for the
// delivery archive.
package audio
