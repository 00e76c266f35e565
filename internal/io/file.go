package ioutils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// maxFileNameLen caps sanitized names (before the extension) so paths
// stay portable.
const maxFileNameLen = 100

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName makes a name safe for storage on any filesystem.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Leading/trailing whitespace → removed
//   - Result truncated to 100 characters
//
// The result is guaranteed non-empty: if sanitization empties the name,
// a generated identifier is returned instead.
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")  // "Song_ Part 1_2"
//	SanitizeFileName("   ???   ")       // "track-5f2b..." (generated)
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	if runes := []rune(name); len(runes) > maxFileNameLen {
		name = strings.TrimSpace(string(runes[:maxFileNameLen]))
	}

	if name == "" {
		name = "track-" + uuid.NewString()[:8]
	}

	return name
}

// CreateUnique creates a new file named base+ext in dir, suffixing a
// counter on collision: "name.mp3", "name (2).mp3", "name (3).mp3", …
//
// The file is claimed with O_EXCL, so the returned path is unique even
// when multiple workers write the same sanitized name into the shared
// destination directory concurrently. The caller owns closing the file.
func CreateUnique(dir, base, ext string) (string, *os.File, error) {
	for n := 1; ; n++ {
		name := base + ext
		if n > 1 {
			name = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}

		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
	}
}

// EnsureDir creates a directory and all parents if they don't exist.
// Directories are created with mode 0755.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
