// Package storage persists profiler reports.
//
// The only backend is an SQLite database file (modernc.org/sqlite, no cgo).
// Each report is one row in reports plus one row per histogram.
package storage
