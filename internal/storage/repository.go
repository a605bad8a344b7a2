// Package storage persists dashboard snapshots to SQLite so the API can
// serve the last good dashboard while a refresh is in flight or upstream is
// down.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joshnel2/dnzdashboard/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshots is returned by Latest when nothing has been saved yet.
var ErrNoSnapshots = errors.New("no snapshots stored")

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	ID        int64
	FetchedAt time.Time
	CreatedAt time.Time
}

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(dbPath string) (*SnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotRepository{db: db}, nil
}

func (r *SnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save stores one dashboard snapshot and returns its id.
func (r *SnapshotRepository) Save(ctx context.Context, data core.DashboardData, fetchedAt time.Time) (int64, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot payload: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (fetched_at, payload) VALUES (?, ?)`,
		fetchedAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot insert id: %w", err)
	}

	slog.InfoContext(ctx, "Dashboard snapshot saved",
		"id", id,
		"fetched_at", fetchedAt,
		"payload_bytes", len(payload))
	return id, nil
}

// Latest returns the most recently fetched snapshot.
func (r *SnapshotRepository) Latest(ctx context.Context) (core.DashboardData, time.Time, error) {
	var payload, fetchedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT 1`,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DashboardData{}, time.Time{}, ErrNoSnapshots
	}
	if err != nil {
		return core.DashboardData{}, time.Time{}, fmt.Errorf("query latest snapshot: %w", err)
	}

	var data core.DashboardData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return core.DashboardData{}, time.Time{}, fmt.Errorf("unmarshal snapshot payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return core.DashboardData{}, time.Time{}, fmt.Errorf("parse snapshot timestamp: %w", err)
	}
	return data, ts, nil
}

// List returns snapshot metadata, newest first.
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, fetched_at, created_at FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var fetchedAt, createdAt string
		if err := rows.Scan(&info.ID, &fetchedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		if info.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp: %w", err)
		}
		// created_at comes from SQLite's CURRENT_TIMESTAMP.
		if info.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAt); err != nil {
			info.CreatedAt = info.FetchedAt
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep snapshots.
func (r *SnapshotRepository) Prune(ctx context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.InfoContext(ctx, "Pruned old snapshots", "deleted", n, "kept", keep)
	}
	return nil
}
