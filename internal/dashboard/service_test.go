package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/joshnel2/dnzdashboard/internal/clio"
	"github.com/joshnel2/dnzdashboard/internal/core"
)

type fakeSource struct {
	reports    map[clio.RecordKind][]core.Record
	reportErrs map[clio.RecordKind]error

	timeEntries []core.Record
	payments    []core.Record
	allocations []core.Record

	calls []string
}

func (f *fakeSource) FetchRecords(ctx context.Context, kind clio.RecordKind, dr clio.DateRange) ([]core.Record, error) {
	f.calls = append(f.calls, "report:"+string(kind))
	if err := f.reportErrs[kind]; err != nil {
		return nil, err
	}
	return f.reports[kind], nil
}

func (f *fakeSource) FetchTimeEntries(ctx context.Context, dr clio.DateRange) ([]core.Record, error) {
	f.calls = append(f.calls, "collection:time_entries")
	return f.timeEntries, nil
}

func (f *fakeSource) FetchPaymentActivities(ctx context.Context, dr clio.DateRange) ([]core.Record, error) {
	f.calls = append(f.calls, "collection:activities")
	return f.payments, nil
}

func (f *fakeSource) FetchAllocations(ctx context.Context, dr clio.DateRange) ([]core.Record, error) {
	f.calls = append(f.calls, "collection:allocations")
	return f.allocations, nil
}

func testService(src Source, cfg Config) *Service {
	s := NewService(src, cfg)
	s.now = func() time.Time {
		return time.Date(2025, time.March, 15, 0, 0, 0, 0, time.Local)
	}
	return s
}

func TestServiceAssemblesDashboard(t *testing.T) {
	src := &fakeSource{
		reports: map[clio.RecordKind][]core.Record{
			clio.KindRevenue: {
				{"Payment Date": "2025-03-10", "Amount Collected": "1,500.00"},
				{"Payment Date": "2025-01-05", "Amount Collected": "2,000.00"},
			},
			clio.KindProductivity: {
				{"Timekeeper": "Jane Smith", "Billable Hours": "10.5"},
				{"Timekeeper": "John Doe", "Billable Hours": "7"},
			},
			clio.KindTime: {
				{"date": "2025-02-11", "quantity": 6, "user": "Jane Smith"},
			},
		},
	}
	s := testService(src, Config{})

	data, err := s.Data(context.Background())
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if data.MonthlyDeposits != 1500 {
		t.Fatalf("MonthlyDeposits = %v, want 1500", data.MonthlyDeposits)
	}
	if len(data.AttorneyBillableHours) != 2 || data.AttorneyBillableHours[0].Name != "Jane Smith" {
		t.Fatalf("AttorneyBillableHours = %v", data.AttorneyBillableHours)
	}
	if len(data.WeeklyRevenue) != 12 {
		t.Fatalf("WeeklyRevenue has %d points, want 12", len(data.WeeklyRevenue))
	}
	// March assembly spans Jan..Mar.
	if len(data.YTDRevenue) != 3 || len(data.YTDTime) != 3 {
		t.Fatalf("YTD lengths = %d/%d, want 3/3", len(data.YTDRevenue), len(data.YTDTime))
	}
	if data.YTDTime[1].Hours != 6 {
		t.Fatalf("YTDTime Feb = %v, want 6 hours", data.YTDTime[1])
	}
}

func TestServiceFallsBackToCollections(t *testing.T) {
	unavailable := func(kind string) error {
		return &clio.SourceUnavailableError{Kind: kind, Attempts: []string{"managed/x"}}
	}
	src := &fakeSource{
		reportErrs: map[clio.RecordKind]error{
			clio.KindRevenue:      unavailable("revenue"),
			clio.KindProductivity: unavailable("productivity"),
			clio.KindTime:         unavailable("time entries"),
		},
		payments: []core.Record{
			{"date": "2025-03-01", "total": 1000},
		},
		timeEntries: []core.Record{
			{"user": "A", "date": "2025-03-02", "quantity": 5},
			{"user": "B", "date": "2025-03-05", "quantity": 2},
		},
	}
	s := testService(src, Config{})

	data, err := s.Data(context.Background())
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if data.MonthlyDeposits != 1000 {
		t.Fatalf("MonthlyDeposits = %v, want 1000 from payment activities", data.MonthlyDeposits)
	}
	// With productivity gone the attorney board comes from time entries.
	if len(data.AttorneyBillableHours) != 2 || data.AttorneyBillableHours[0].Name != "A" {
		t.Fatalf("AttorneyBillableHours = %v", data.AttorneyBillableHours)
	}
}

func TestServiceAuthErrorAborts(t *testing.T) {
	src := &fakeSource{
		reportErrs: map[clio.RecordKind]error{
			clio.KindRevenue: &clio.StatusError{StatusCode: 401, URL: "https://example.test"},
		},
	}
	s := testService(src, Config{})

	_, err := s.Data(context.Background())
	if err == nil {
		t.Fatal("want error on 401")
	}
	if !clio.IsAuthError(err) {
		t.Fatalf("want auth error, got %v", err)
	}
}

func TestServiceSampleOnZero(t *testing.T) {
	src := &fakeSource{}
	s := testService(src, Config{SampleOnZero: true})

	data, err := s.Data(context.Background())
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if data.MonthlyDeposits != SampleData().MonthlyDeposits {
		t.Fatalf("expected sample data, got %+v", data)
	}

	s = testService(&fakeSource{}, Config{})
	data, err = s.Data(context.Background())
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if !data.IsZero() {
		t.Fatalf("without SampleOnZero an empty tenant yields zeros, got %+v", data)
	}
}
