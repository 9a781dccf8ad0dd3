// Package extractor implements the per-platform download strategies and the
// fallback chain that runs them in priority order.
package extractor

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"botdl/internal/entity"
)

// defaultProgressFreq is how often strategies poll their tool for progress.
// The user-facing update rate is throttled separately by the reporter.
const defaultProgressFreq = 200 * time.Millisecond

// ProgressFunc receives byte-count samples while a strategy downloads.
// Called from the strategy's goroutine; implementations must not block.
type ProgressFunc func(entity.ProgressSample)

// Strategy downloads the media behind a request URL into a subdirectory of
// the request's downloads root.
//
// On failure a strategy removes any partial files it wrote before
// returning. Errors wrapped with errs.Retryable let the chain fall through
// to the next strategy; anything else stops the chain.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, req *entity.Request, onProgress ProgressFunc) (*entity.Extraction, error)
}

// mediaExts are the file extensions the directory-scan fallback accepts.
var mediaExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".mov":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
}

// collectMedia walks dir and returns every media file in it, sorted by
// path. Partial downloads and metadata files are skipped.
func collectMedia(dir string) []string {
	var files []string

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		if mediaExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}

		return nil
	})

	return files
}
