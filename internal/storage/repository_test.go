package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

func testRepo(t *testing.T) *SnapshotRepository {
	t.Helper()
	repo, err := NewSnapshotRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSnapshotRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	data := core.DashboardData{
		MonthlyDeposits: 1234.56,
		AttorneyBillableHours: []core.AttorneyHours{
			{Name: "Jane Smith", Hours: 42},
		},
		YTDRevenue: []core.MonthAmount{{Date: "2025-01", Amount: 1234.56}},
	}
	fetchedAt := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

	id, err := repo.Save(ctx, data, fetchedAt)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == 0 {
		t.Fatal("Save returned zero id")
	}

	got, ts, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !ts.Equal(fetchedAt) {
		t.Fatalf("fetched_at = %v, want %v", ts, fetchedAt)
	}
	if got.MonthlyDeposits != data.MonthlyDeposits {
		t.Fatalf("MonthlyDeposits = %v, want %v", got.MonthlyDeposits, data.MonthlyDeposits)
	}
	if len(got.AttorneyBillableHours) != 1 || got.AttorneyBillableHours[0].Name != "Jane Smith" {
		t.Fatalf("AttorneyBillableHours = %v", got.AttorneyBillableHours)
	}
}

func TestLatestEmpty(t *testing.T) {
	repo := testRepo(t)
	if _, _, err := repo.Latest(context.Background()); !errors.Is(err, ErrNoSnapshots) {
		t.Fatalf("Latest on empty store = %v, want ErrNoSnapshots", err)
	}
}

func TestLatestPicksNewest(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		data := core.DashboardData{MonthlyDeposits: float64(i)}
		if _, err := repo.Save(ctx, data, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	got, _, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.MonthlyDeposits != 2 {
		t.Fatalf("Latest MonthlyDeposits = %v, want 2", got.MonthlyDeposits)
	}
}

func TestListAndPrune(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := repo.Save(ctx, core.DashboardData{MonthlyDeposits: float64(i)}, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	infos, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 5 {
		t.Fatalf("List returned %d snapshots, want 5", len(infos))
	}
	if !infos[0].FetchedAt.After(infos[4].FetchedAt) {
		t.Fatal("List should be newest first")
	}

	if err := repo.Prune(ctx, 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	infos, err = repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List after prune: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("after prune List returned %d, want 2", len(infos))
	}

	// Newest survives pruning.
	got, _, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest after prune: %v", err)
	}
	if got.MonthlyDeposits != 4 {
		t.Fatalf("Latest after prune = %v, want 4", got.MonthlyDeposits)
	}
}
