package storage

import (
	"errors"
	"time"

	"acorn/acornos/profiler"
)

var (
	ErrDisabled = errors.New("storage disabled")
	ErrNotFound = errors.New("report not found")
)

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file at Path
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // 0 means 5s
}

// Report is a stored set of profiler snapshots.
type Report struct {
	ID        int64
	At        time.Time
	Snapshots []profiler.Snapshot
}
