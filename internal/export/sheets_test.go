package export

import (
	"context"
	"testing"
	"time"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

func TestBuildRows(t *testing.T) {
	data := core.DashboardData{
		MonthlyDeposits: 1500,
		AttorneyBillableHours: []core.AttorneyHours{
			{Name: "Jane Smith", Hours: 42},
			{Name: "John Doe", Hours: 30},
		},
		WeeklyRevenue: []core.WeekPoint{{Week: "3/2", Amount: 100}},
		YTDTime:       []core.MonthHours{{Date: "2025-01", Hours: 12}},
		YTDRevenue:    []core.MonthAmount{{Date: "2025-01", Amount: 100}},
	}
	fetchedAt := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	rows := buildRows(data, fetchedAt)

	if rows[0][0] != "Dashboard" || rows[0][2] != "2025-03-15T10:00:00Z" {
		t.Fatalf("header row = %v", rows[0])
	}
	if rows[2][0] != "Monthly Deposits" || rows[2][1] != 1500.0 {
		t.Fatalf("deposits row = %v", rows[2])
	}

	// Attorney block starts after the deposits row and its spacer.
	if rows[4][0] != "Attorney" {
		t.Fatalf("attorney header = %v", rows[4])
	}
	if rows[5][0] != "Jane Smith" || rows[5][1] != 42.0 {
		t.Fatalf("attorney row = %v", rows[5])
	}

	// Every series entry lands in exactly one row: 5 header/spacer rows up
	// front plus 2 attorneys, then 3 blocks of (spacer + header + points).
	want := 5 + 2 + (2 + 1) + (2 + 1) + (2 + 1)
	if len(rows) != want {
		t.Fatalf("got %d rows, want %d", len(rows), want)
	}
}

func TestNewExporterValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewExporter(ctx, Options{}); err == nil {
		t.Fatal("missing spreadsheet ID should error")
	}
	if _, err := NewExporter(ctx, Options{SpreadsheetID: "abc"}); err == nil {
		t.Fatal("missing OAuth client should error")
	}
}
