package dashboard

import (
	"math"
	"testing"
	"time"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestAggregateHours(t *testing.T) {
	records := []core.Record{
		{"user": "A", "date": "2025-03-02", "quantity": 5},
		{"user": "A", "date": "2025-03-20", "quantity": 3},
		{"user": "B", "date": "2025-03-05", "quantity": 2},
	}
	got := AggregateHours(records)
	want := []core.AttorneyHours{{Name: "A", Hours: 8}, {Name: "B", Hours: 2}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAggregateHoursNoColumns(t *testing.T) {
	if got := AggregateHours(nil); got != nil {
		t.Fatalf("nil records should yield nil, got %v", got)
	}
	records := []core.Record{{"matter": "X", "status": "open"}}
	if got := AggregateHours(records); got != nil {
		t.Fatalf("records without hour columns should yield nil, got %v", got)
	}
}

func TestAggregateRevenueMonthlyTotals(t *testing.T) {
	now := date(2025, time.February, 15)
	records := []core.Record{
		{"date": "2025-01-15", "total": 1000},
		{"date": "2025-02-01", "total": "(200)"},
	}
	got := AggregateRevenue(records, now)

	wantYTD := []core.MonthAmount{
		{Date: "2025-01", Amount: 1000},
		{Date: "2025-02", Amount: -200},
	}
	if len(got.YTDRevenue) != len(wantYTD) {
		t.Fatalf("YTDRevenue = %v, want %v", got.YTDRevenue, wantYTD)
	}
	for i := range wantYTD {
		if got.YTDRevenue[i] != wantYTD[i] {
			t.Fatalf("YTDRevenue[%d] = %v, want %v", i, got.YTDRevenue[i], wantYTD[i])
		}
	}
	if got.MonthlyDeposits != -200 {
		t.Fatalf("MonthlyDeposits = %v, want -200", got.MonthlyDeposits)
	}

	// 2025-02-01 is a Saturday, so it lands in the week starting Sunday 1/26.
	var found bool
	for _, p := range got.WeeklyRevenue {
		if p.Week == "1/26" {
			found = true
			if p.Amount != -200 {
				t.Fatalf("week 1/26 = %v, want -200", p.Amount)
			}
		}
	}
	if !found {
		t.Fatalf("week 1/26 missing from %v", got.WeeklyRevenue)
	}
}

func TestAggregateRevenueCurrentMonthBucketFallback(t *testing.T) {
	now := date(2025, time.February, 15)
	// Dated after "today" but inside the current month. The range filter
	// misses it; the month bucket should still win.
	records := []core.Record{
		{"payment_date": "2025-02-28", "amount_collected": "300.00"},
	}
	got := AggregateRevenue(records, now)
	if got.MonthlyDeposits != 300 {
		t.Fatalf("MonthlyDeposits = %v, want bucket fallback 300", got.MonthlyDeposits)
	}
}

func TestAggregateRevenueRoundTrip(t *testing.T) {
	now := date(2025, time.April, 20)
	records := []core.Record{
		{"Payment Date": "2025-01-10", "Amount Collected": "1,234.56"},
		{"Payment Date": "2025-02-14", "Amount Collected": "(50.06)"},
		{"Payment Date": "2025-03-01", "Amount Collected": "999.99"},
		{"Payment Date": "2025-04-02", "Amount Collected": "0.01"},
	}
	got := AggregateRevenue(records, now)

	var sum float64
	for _, p := range got.YTDRevenue {
		sum += p.Amount
	}
	want := 1234.56 - 50.06 + 999.99 + 0.01
	if math.Abs(sum-want) > 1e-6 {
		t.Fatalf("YTD sum = %v, want %v", sum, want)
	}
}

func TestAggregateYTDTimeZeroFills(t *testing.T) {
	now := date(2025, time.March, 10)
	records := []core.Record{
		{"date": "2025-01-05", "quantity": 4},
		{"date": "2025-01-20", "quantity": 6},
		{"date": "2025-03-01", "quantity": 2.5},
	}
	got := AggregateYTDTime(records, now)
	want := []core.MonthHours{
		{Date: "2025-01", Hours: 10},
		{Date: "2025-02", Hours: 0},
		{Date: "2025-03", Hours: 2.5},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("month %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAggregateYTDTimePointCount(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		now := date(2025, m, 15)
		got := AggregateYTDTime(nil, now)
		if len(got) != int(m) {
			t.Fatalf("month %v: %d points, want %d", m, len(got), int(m))
		}
	}
}

func TestBuildWeeklySeriesAlwaysTwelvePoints(t *testing.T) {
	now := date(2025, time.February, 15)
	got := BuildWeeklySeries(nil, now)
	if len(got) != 12 {
		t.Fatalf("got %d points, want 12", len(got))
	}
	for _, p := range got {
		if p.Amount != 0 {
			t.Fatalf("empty input should zero-fill, got %v", p)
		}
	}
	if got[0].Week != "11/24" {
		t.Fatalf("oldest week = %s, want 11/24", got[0].Week)
	}
	if got[11].Week != "2/9" {
		t.Fatalf("newest week = %s, want 2/9", got[11].Week)
	}
}
