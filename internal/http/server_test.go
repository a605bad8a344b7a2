package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joshnel2/dnzdashboard/internal/clio"
	"github.com/joshnel2/dnzdashboard/internal/core"
	"github.com/joshnel2/dnzdashboard/internal/storage"
)

type fakeProvider struct {
	data  core.DashboardData
	err   error
	calls int
}

func (p *fakeProvider) Data(ctx context.Context) (core.DashboardData, error) {
	p.calls++
	return p.data, p.err
}

type fakeSnapshots struct {
	data      core.DashboardData
	fetchedAt time.Time
	err       error
}

func (f *fakeSnapshots) Latest(ctx context.Context) (core.DashboardData, time.Time, error) {
	return f.data, f.fetchedAt, f.err
}

func (f *fakeSnapshots) List(ctx context.Context, limit int) ([]storage.SnapshotInfo, error) {
	return []storage.SnapshotInfo{{ID: 1, FetchedAt: f.fetchedAt}}, nil
}

func newTestServer(provider DashboardProvider, snapshots SnapshotReader) *Server {
	s := NewServer(":0", provider, snapshots)
	return s
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestDashboardEndpoint(t *testing.T) {
	provider := &fakeProvider{data: core.DashboardData{MonthlyDeposits: 1500}}
	s := newTestServer(provider, nil)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got core.DashboardData
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.MonthlyDeposits != 1500 {
		t.Fatalf("monthlyDeposits = %v, want 1500", got.MonthlyDeposits)
	}

	// Second request is served from cache without touching the provider.
	doRequest(t, s, http.MethodGet, "/api/dashboard")
	if provider.calls != 1 {
		t.Fatalf("provider called %d times, want 1 (cached)", provider.calls)
	}
}

func TestDashboardAuthError(t *testing.T) {
	provider := &fakeProvider{err: &clio.StatusError{StatusCode: 401, URL: "https://example.test"}}
	s := newTestServer(provider, nil)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestDashboardSnapshotFallback(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream exploded")}
	fetchedAt := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	snaps := &fakeSnapshots{
		data:      core.DashboardData{MonthlyDeposits: 999},
		fetchedAt: fetchedAt,
	}
	s := newTestServer(provider, snaps)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 from snapshot", rec.Code)
	}
	if got := rec.Header().Get("X-Dashboard-Snapshot"); got != "2025-03-15T10:00:00Z" {
		t.Fatalf("X-Dashboard-Snapshot = %q", got)
	}
	var got core.DashboardData
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.MonthlyDeposits != 999 {
		t.Fatalf("monthlyDeposits = %v, want snapshot value 999", got.MonthlyDeposits)
	}
}

func TestDashboardBadGatewayWithoutSnapshot(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream exploded")}
	snaps := &fakeSnapshots{err: storage.ErrNoSnapshots}
	s := newTestServer(provider, snaps)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestSampleEndpoint(t *testing.T) {
	s := newTestServer(&fakeProvider{}, nil)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard/sample")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got core.DashboardData
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.MonthlyDeposits != 425000 {
		t.Fatalf("sample monthlyDeposits = %v, want 425000", got.MonthlyDeposits)
	}
	if len(got.WeeklyRevenue) != 12 {
		t.Fatalf("sample weeklyRevenue has %d points, want 12", len(got.WeeklyRevenue))
	}
}

func TestSnapshotsEndpoint(t *testing.T) {
	snaps := &fakeSnapshots{fetchedAt: time.Now()}
	s := newTestServer(&fakeProvider{}, snaps)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodGet, "/api/snapshots")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	s = newTestServer(&fakeProvider{}, nil)
	defer s.Shutdown(context.Background())
	rec = doRequest(t, s, http.MethodGet, "/api/snapshots")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status without store = %d, want 404", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeProvider{}, nil)
	defer s.Shutdown(context.Background())

	rec := doRequest(t, s, http.MethodPost, "/api/dashboard")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(&fakeProvider{}, nil)
	defer s.Shutdown(context.Background())

	if rec := doRequest(t, s, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
}

func TestRateLimiting(t *testing.T) {
	s := newTestServer(&fakeProvider{}, nil)
	defer s.Shutdown(context.Background())

	var limited bool
	for i := 0; i < 70; i++ {
		rec := doRequest(t, s, http.MethodGet, "/api/dashboard/sample")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("expected rate limiting to kick in within 70 requests")
	}
}
