// Package storage enforces the delivery size limit and owns removal of
// downloaded files and their per-request directories.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"botdl/internal/config"
	"botdl/internal/consts"
)

const megabyte = 1024 * 1024

// Storage checks produced files against the configured size limit and
// removes them after delivery.
type Storage struct {
	log  *slog.Logger
	cfg  *config.Config
	root string
}

// New creates a Storage rooted at the configured downloads directory.
func New(log *slog.Logger, cfg *config.Config) (*Storage, error) {
	if err := os.MkdirAll(cfg.Dir.Downloads, 0o755); err != nil {
		return nil, fmt.Errorf("create downloads root: %w", err)
	}

	return &Storage{
		log:  log.With(slog.String("package", "storage")),
		cfg:  cfg,
		root: cfg.Dir.Downloads,
	}, nil
}

// Check reports whether the file at path fits the delivery limit, along
// with its size in megabytes.
func (s *Storage) Check(path string) (bool, float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, fmt.Errorf("stat file: %w", err)
	}

	sizeMB := float64(info.Size()) / megabyte

	return sizeMB <= float64(s.cfg.Limit.MaxFileMB), sizeMB, nil
}

// Remove deletes the file at path. When the parent directory is left empty
// it is removed too, unless it is the downloads root. Removing a missing
// file is not an error, so Remove is safe to call twice for the same path.
func (s *Storage) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}

	if err == nil {
		s.log.Debug("file removed", slog.String("path", path))
	}

	parent := filepath.Dir(path)
	if parent == s.root || filepath.Base(parent) == consts.DownloadsRootName {
		return nil
	}

	entries, err := os.ReadDir(parent)
	if err != nil || len(entries) > 0 {
		return nil
	}

	if err := os.Remove(parent); err != nil {
		s.log.Warn("failed to remove empty dir", slog.String("path", parent), "error", err)

		return nil
	}

	s.log.Debug("empty dir removed", slog.String("path", parent))

	return nil
}
