package clio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

// reportPath is one candidate CSV export route, addressed as
// /reports/{category}/{key}.csv.
type reportPath struct {
	Category string
	Key      string
}

func (p reportPath) String() string {
	return p.Category + "/" + p.Key
}

// Candidate routes per report, in preference order. Which routes exist
// depends on the deployment's report configuration, so each list carries the
// variants seen in the wild.
var (
	revenueReportPaths = []reportPath{
		{"managed", "revenue"},
		{"billing", "revenue"},
		{"standard", "revenue"},
	}

	productivityReportPaths = []reportPath{
		{"managed", "productivity_by_user"},
		{"managed", "productivity_user"},
		{"managed", "productivity"},
	}

	timeEntriesReportPaths = []reportPath{
		{"standard", "time_entries"},
		{"standard", "time_entries_detail"},
		{"managed", "time_entries_detail"},
	}
)

// Extra, non-date parameters appended as additional variants per report.
var (
	revenueParamExtras = []url.Values{
		{},
		{"filters[date_range][name]": {"payment_date"}},
	}

	timeEntriesParamExtras = []url.Values{
		{},
		{"detail": {"true"}},
		{"filters[group_by]": {"entry"}},
	}
)

// dateParamVariants enumerates the date-range query parameter spellings seen
// across deployments, in preference order.
func dateParamVariants(dr DateRange) []url.Values {
	start := dr.Start.Format("2006-01-02")
	end := dr.End.Format("2006-01-02")

	variants := []url.Values{
		{"filters[date_range][start]": {start}, "filters[date_range][end]": {end}},
		{"filters[date][start]": {start}, "filters[date][end]": {end}},
		{"filters[date_range][from]": {start}, "filters[date_range][to]": {end}},
		{"date[start]": {start}, "date[end]": {end}},
		{"start_date": {start}, "end_date": {end}},
		{"from": {start}, "to": {end}},
		{"filters[start_date]": {start}, "filters[end_date]": {end}},
	}
	return dedupeParams(variants)
}

// combineParams crosses date variants with per-report extras; date keys win
// on collision.
func combineParams(dates, extras []url.Values) []url.Values {
	if len(extras) == 0 {
		extras = []url.Values{{}}
	}
	var combined []url.Values
	for _, date := range dates {
		for _, extra := range extras {
			params := url.Values{}
			for k, v := range extra {
				params[k] = v
			}
			for k, v := range date {
				params[k] = v
			}
			combined = append(combined, params)
		}
	}
	return dedupeParams(combined)
}

func dedupeParams(in []url.Values) []url.Values {
	seen := map[string]struct{}{}
	out := in[:0]
	for _, params := range in {
		key := params.Encode()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, params)
	}
	return out
}

// fetchReport walks the (path × params) candidate list lazily, stopping at
// the first variant the deployment accepts. 400/404/422 mean "wrong variant,
// keep going"; any other failure is surfaced immediately. When every variant
// is exhausted the returned error names each attempted route.
func (c *Client) fetchReport(ctx context.Context, label string, paths []reportPath, dr DateRange, extras []url.Values) ([]core.Record, error) {
	variants := combineParams(dateParamVariants(dr), extras)

	var attempts []string
	var last error
	for _, path := range paths {
		attempts = append(attempts, path.String())
		for _, params := range variants {
			body, err := c.get(ctx, fmt.Sprintf("/reports/%s/%s.csv", path.Category, path.Key), params, "text/csv")
			if err == nil {
				records := ParseCSV(string(body))
				slog.DebugContext(ctx, "Report fetched",
					"report", label,
					"path", path.String(),
					"records", len(records))
				return records, nil
			}

			var se *StatusError
			if errors.As(err, &se) && se.retryable() {
				last = err
				continue
			}
			return nil, fmt.Errorf("fetch %s report: %w", label, err)
		}
	}

	return nil, &SourceUnavailableError{Kind: label, Attempts: attempts, Last: last}
}
