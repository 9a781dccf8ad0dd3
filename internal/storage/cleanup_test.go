package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"botdl/internal/config"
	"botdl/internal/storage"

	"log/slog"
)

func TestSweep(t *testing.T) {
	root := filepath.Join(t.TempDir(), "downloads")
	cfg := &config.Config{}
	cfg.Dir.Downloads = root
	cfg.Limit.StaleAge = 24 * time.Hour

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	stg, err := storage.New(log, cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	now := time.Now()

	stale := filepath.Join(root, "yt_20240101-120000_dead0000")
	writeFile(t, filepath.Join(stale, "leftover.mp4"), 10)

	if err := os.Chtimes(stale, now.Add(-48*time.Hour), now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	fresh := filepath.Join(root, "yt_20240102-120000_beef0000")
	writeFile(t, filepath.Join(fresh, "inflight.mp4"), 10)

	stg.Sweep(now)

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("expected stale dir to be swept")
	}

	if _, err := os.Stat(fresh); err != nil {
		t.Error("expected fresh dir to survive the sweep")
	}
}
