//go:build !tinygo

package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"acorn/acornos/profiler"
	"acorn/acornos/services/logger"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logger.Logger
}

func openSQLite(cfg Config, log logger.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()))
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Debug("storage: sqlite ready", logger.String("path", path))
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) SaveReport(ctx context.Context, at time.Time, snaps []profiler.Snapshot) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrDisabled
	}
	if at.IsZero() {
		at = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO reports(at) VALUES(?)`, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for i, sn := range snaps {
		data, err := json.Marshal(sn.Data)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO histograms(report_id, pos, name, type, hist, div, exp, hz, runtime_ms, data)
			 VALUES(?,?,?,?,?,?,?,?,?,?)`,
			id, i, sn.Name, sn.Type, sn.Hist, sn.Div, sn.Exp, sn.Hz, sn.RuntimeMs, string(data),
		)
		if err != nil {
			return 0, fmt.Errorf("insert %s/%s: %w", sn.Name, sn.Type, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *sqliteStore) LatestReport(ctx context.Context) (Report, error) {
	if s == nil || s.db == nil {
		return Report{}, ErrDisabled
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM reports ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, err
	}
	return s.Report(ctx, id)
}

func (s *sqliteStore) Report(ctx context.Context, id int64) (Report, error) {
	if s == nil || s.db == nil {
		return Report{}, ErrDisabled
	}
	r := Report{ID: id}
	var at string
	err := s.db.QueryRowContext(ctx, `SELECT at FROM reports WHERE id = ?`, id).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, err
	}
	r.At, _ = time.Parse(time.RFC3339Nano, at)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, type, hist, div, exp, hz, runtime_ms, data
		 FROM histograms WHERE report_id = ? ORDER BY pos`, id)
	if err != nil {
		return Report{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var sn profiler.Snapshot
		var data string
		if err := rows.Scan(&sn.Name, &sn.Type, &sn.Hist, &sn.Div, &sn.Exp, &sn.Hz, &sn.RuntimeMs, &data); err != nil {
			return Report{}, err
		}
		if err := json.Unmarshal([]byte(data), &sn.Data); err != nil {
			return Report{}, fmt.Errorf("decode %s/%s: %w", sn.Name, sn.Type, err)
		}
		r.Snapshots = append(r.Snapshots, sn)
	}
	return r, rows.Err()
}

func (s *sqliteStore) ListReports(ctx context.Context, limit int) ([]Report, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, at FROM reports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Report
	for rows.Next() {
		var r Report
		var at string
		if err := rows.Scan(&r.ID, &at); err != nil {
			return nil, err
		}
		r.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, r)
	}
	return out, rows.Err()
}
