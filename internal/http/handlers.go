package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/joshnel2/dnzdashboard/internal/clio"
	"github.com/joshnel2/dnzdashboard/internal/dashboard"
)

const dashboardCacheKey = "dashboard"

// handleDashboard serves the assembled dashboard. Upstream auth failures map
// to 401 so the caller can re-run the token flow; any other upstream failure
// serves the last stored snapshot when one exists, else 502.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if data, found := s.dashCache.Get(dashboardCacheKey); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit")
		writeJSON(w, http.StatusOK, data)
		return
	}

	data, err := s.provider.Data(r.Context())
	if err != nil {
		if clio.IsAuthError(err) {
			slog.WarnContext(r.Context(), "Upstream authorization failed", "error", err)
			writeJSONError(w, http.StatusUnauthorized, "upstream authorization failed")
			return
		}

		slog.ErrorContext(r.Context(), "Dashboard assembly failed", "error", err)
		if s.snapshots != nil {
			snap, fetchedAt, serr := s.snapshots.Latest(r.Context())
			if serr == nil {
				w.Header().Set("X-Dashboard-Snapshot", fetchedAt.UTC().Format(time.RFC3339))
				writeJSON(w, http.StatusOK, snap)
				return
			}
			slog.WarnContext(r.Context(), "No snapshot available for fallback", "error", serr)
		}
		writeJSONError(w, http.StatusBadGateway, "upstream unavailable")
		return
	}

	s.dashCache.Set(dashboardCacheKey, data)
	writeJSON(w, http.StatusOK, data)
}

// handleSampleDashboard serves the static demo fixture.
func (s *Server) handleSampleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.SampleData())
}

// handleSnapshots lists stored snapshot metadata, newest first.
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.snapshots == nil {
		writeJSONError(w, http.StatusNotFound, "snapshot store not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	infos, err := s.snapshots.List(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot list failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "snapshot store unavailable")
		return
	}

	type item struct {
		ID        int64     `json:"id"`
		FetchedAt time.Time `json:"fetchedAt"`
	}
	out := make([]item, 0, len(infos))
	for _, info := range infos {
		out = append(out, item{ID: info.ID, FetchedAt: info.FetchedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
