// Package archive packages resolved track files into a zip for
// delivery. Files that vanished between download and packaging are
// skipped and reported rather than failing the archive.
package archive
