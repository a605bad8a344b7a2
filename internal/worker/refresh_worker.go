// Package worker periodically refreshes the dashboard and persists the
// result so the API never depends on upstream availability.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

// keepSnapshots bounds the snapshot table; older rows are pruned after each
// successful refresh.
const keepSnapshots = 50

// Provider assembles a fresh dashboard.
type Provider interface {
	Data(ctx context.Context) (core.DashboardData, error)
}

// SnapshotStore persists refreshed dashboards.
type SnapshotStore interface {
	Save(ctx context.Context, data core.DashboardData, fetchedAt time.Time) (int64, error)
	Prune(ctx context.Context, keep int) error
}

// Publisher announces stored snapshots. Optional.
type Publisher interface {
	PublishRefreshed(ctx context.Context, snapshotID int64, fetchedAt time.Time) error
}

// Exporter mirrors snapshots to an external sheet. Optional.
type Exporter interface {
	Export(ctx context.Context, data core.DashboardData, fetchedAt time.Time) error
}

// RefreshWorker runs the fetch-aggregate-store cycle.
type RefreshWorker struct {
	provider  Provider
	store     SnapshotStore
	publisher Publisher
	exporter  Exporter
	now       func() time.Time
}

// NewRefreshWorker wires a refresh cycle. publisher and exporter may be nil.
func NewRefreshWorker(provider Provider, store SnapshotStore, publisher Publisher, exporter Exporter) *RefreshWorker {
	return &RefreshWorker{
		provider:  provider,
		store:     store,
		publisher: publisher,
		exporter:  exporter,
		now:       time.Now,
	}
}

// RunOnce performs one refresh cycle and returns the stored snapshot id.
// A fetch or store failure aborts the cycle; publish and export failures are
// logged but do not fail it, the snapshot is already safe.
func (w *RefreshWorker) RunOnce(ctx context.Context) (int64, error) {
	fetchedAt := w.now()

	data, err := w.provider.Data(ctx)
	if err != nil {
		return 0, fmt.Errorf("assemble dashboard: %w", err)
	}

	id, err := w.store.Save(ctx, data, fetchedAt)
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}

	if w.publisher != nil {
		if err := w.publisher.PublishRefreshed(ctx, id, fetchedAt); err != nil {
			slog.WarnContext(ctx, "Failed to publish refresh message", "error", err, "snapshot_id", id)
		}
	}
	if w.exporter != nil {
		if err := w.exporter.Export(ctx, data, fetchedAt); err != nil {
			slog.WarnContext(ctx, "Failed to export snapshot to sheets", "error", err, "snapshot_id", id)
		}
	}

	if err := w.store.Prune(ctx, keepSnapshots); err != nil {
		slog.WarnContext(ctx, "Failed to prune snapshots", "error", err)
	}

	slog.InfoContext(ctx, "Dashboard refresh complete",
		"snapshot_id", id,
		"fetched_at", fetchedAt,
		"monthly_deposits", data.MonthlyDeposits)
	return id, nil
}

// Run refreshes immediately and then on every tick until ctx ends.
func (w *RefreshWorker) Run(ctx context.Context, interval time.Duration) error {
	if _, err := w.RunOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Refresh worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
			}
		}
	}
}
