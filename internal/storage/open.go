package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"acorn/acornos/profiler"
	"acorn/acornos/services/logger"
)

// Store is the persistence API used by the report service and profstat.
type Store interface {
	SaveReport(ctx context.Context, at time.Time, snaps []profiler.Snapshot) (int64, error)
	// LatestReport returns ErrNotFound when nothing was saved yet.
	LatestReport(ctx context.Context) (Report, error)
	Report(ctx context.Context, id int64) (Report, error)
	// ListReports returns up to limit reports, newest first, without
	// snapshots.
	ListReports(ctx context.Context, limit int) ([]Report, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logger.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "none":
		return nil, nil
	case "sqlite", "sqlite3":
		st, err := openSQLite(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("storage: open %s: %w", cfg.Path, err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}
