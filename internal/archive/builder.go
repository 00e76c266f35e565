package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sonicsync/sonicsync/internal/metrics"
)

// BuildResult reports what a Build produced.
type BuildResult struct {
	// Path is the absolute path of the written archive.
	Path string

	// Packaged lists the source files that made it into the archive.
	Packaged []string

	// Skipped lists source files that vanished before packaging.
	Skipped []string
}

// Builder writes playlist archives into a destination directory.
type Builder struct {
	dir    string
	logger *zap.Logger
}

// NewBuilder creates a Builder writing archives under dir.
func NewBuilder(dir string, logger *zap.Logger) *Builder {
	return &Builder{dir: dir, logger: logger}
}

// Build zips the given files into a freshly named archive. Entry names
// are the file base names. A file missing at packaging time is skipped
// and recorded, not fatal. When manifestName is non-empty, manifest is
// written into the archive under that name alongside the audio entries.
//
// Fails only when the archive itself cannot be created or written.
func (b *Builder) Build(files []string, manifestName, manifest string) (*BuildResult, error) {
	name := fmt.Sprintf("playlist_%s_%s.zip",
		time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	archivePath := filepath.Join(b.dir, name)

	out, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	result := &BuildResult{Path: archivePath}

	for _, file := range files {
		if err := b.addFile(zw, file); err != nil {
			if os.IsNotExist(err) {
				metrics.ArchiveFilesTotal.WithLabelValues("skipped").Inc()
				b.logger.Warn("file vanished before packaging", zap.String("path", file))
				result.Skipped = append(result.Skipped, file)
				continue
			}
			zw.Close()
			return nil, fmt.Errorf("package %s: %w", file, err)
		}
		metrics.ArchiveFilesTotal.WithLabelValues("packaged").Inc()
		result.Packaged = append(result.Packaged, file)
	}

	if manifestName != "" && manifest != "" {
		w, err := zw.Create(manifestName)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("create manifest entry: %w", err)
		}
		if _, err := io.WriteString(w, manifest); err != nil {
			zw.Close()
			return nil, fmt.Errorf("write manifest: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	return result, nil
}

func (b *Builder) addFile(zw *zip.Writer, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(file)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
