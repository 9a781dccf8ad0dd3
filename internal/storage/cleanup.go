package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// RunSweeper periodically removes request directories that outlived their
// request, e.g. after a crash mid-delivery. Blocks until ctx is done.
func (s *Storage) RunSweeper(ctx context.Context) {
	interval := s.cfg.Limit.SweepInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := s.log.With(slog.String("action", "sweep_stale"), slog.Duration("interval", interval))

	for {
		select {
		case <-ticker.C:
			s.Sweep(time.Now())
		case <-ctx.Done():
			log.Info("stale sweeper stopped")

			return
		}
	}
}

// Sweep removes entries under the downloads root whose modification time is
// older than the configured stale age relative to now.
func (s *Storage) Sweep(now time.Time) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.log.Warn("sweep: read downloads root", "error", err)

		return
	}

	cutoff := now.Add(-s.cfg.Limit.StaleAge)
	removed := 0

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.log.Warn("sweep: remove stale entry", slog.String("path", path), "error", err)

			continue
		}

		removed++
	}

	if removed > 0 {
		s.log.Info("stale entries swept", slog.Int("count", removed))
	}
}
