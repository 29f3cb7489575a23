package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ErrSnapshotUnsupported is returned by Snapshot for non-SQLite backends.
var ErrSnapshotUnsupported = errors.New("snapshots are only supported for sqlite")

// Snapshot writes a self-contained copy of the database to destPath using
// VACUUM INTO, which is consistent under WAL and does not block readers.
// destPath must not exist.
func (s *SQLStore) Snapshot(ctx context.Context, destPath string) error {
	if s.dialect != DialectSQLite {
		return ErrSnapshotUnsupported
	}
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("snapshot destination %s already exists", destPath)
	}
	if dir := filepath.Dir(destPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	start := time.Now()
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("vacuum into %s: %w", destPath, err)
	}

	slog.Info("snapshot written",
		"component", "store",
		"path", destPath,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
