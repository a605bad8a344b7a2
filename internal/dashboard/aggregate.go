// Package dashboard turns classified raw records into the typed time series
// the dashboard renders, and assembles the final result.
package dashboard

import (
	"sort"
	"time"

	"github.com/joshnel2/dnzdashboard/internal/core"
	"github.com/joshnel2/dnzdashboard/internal/schema"
)

// RevenueMetrics is the output of one pass over the revenue records.
type RevenueMetrics struct {
	MonthlyDeposits float64
	WeeklyRevenue   []core.WeekPoint
	YTDRevenue      []core.MonthAmount
}

// AggregateRevenue buckets revenue records weekly and monthly and computes
// the current-month deposit total. Records with no inferable date or a zero
// amount are skipped; an uninferable schema yields zero-filled series rather
// than an error.
func AggregateRevenue(records []core.Record, now time.Time) RevenueMetrics {
	weekly := map[string]float64{}
	monthly := map[string]float64{}
	var currentMonth float64

	startOfMonth := core.StartOfMonth(now)
	monthKeys := core.MonthKeyRange(core.StartOfYear(now), now)

	dateKey := schema.InferDateKey(records, schema.RevenueDateKeys)
	revenueCols := schema.FindColumns(records, schema.RevenueInclude, schema.RevenueExclude)
	if len(revenueCols) == 0 {
		revenueCols = schema.FindColumns(records, schema.RevenueFallback, schema.RevenueExclude)
	}

	if dateKey != "" && len(revenueCols) > 0 {
		for _, rec := range records {
			date, ok := core.ParseDate(rec.Get(dateKey))
			if !ok {
				continue
			}
			amount := schema.SumColumns(rec, revenueCols)
			if amount == 0 {
				continue
			}

			if !date.Before(startOfMonth) && !date.After(now) {
				currentMonth += amount
			}
			weekly[core.DayKey(core.WeekStart(date))] += amount
			monthly[core.MonthKey(date)] += amount
		}
	}

	// Records dated at a coarser precision (e.g. "2025-04") land in the
	// month bucket but can miss the [startOfMonth, now] filter; the bucket
	// is the better answer then.
	if currentMonth == 0 {
		currentMonth = monthly[core.MonthKey(now)]
	}

	ytd := make([]core.MonthAmount, len(monthKeys))
	for i, key := range monthKeys {
		ytd[i] = core.MonthAmount{Date: key, Amount: core.Round2(monthly[key])}
	}

	return RevenueMetrics{
		MonthlyDeposits: core.Round2(currentMonth),
		WeeklyRevenue:   BuildWeeklySeries(weekly, now),
		YTDRevenue:      ytd,
	}
}

// AggregateHours totals hours per timekeeper over the batch, sorted by hours
// descending. Returns nil when no name or hour column can be inferred.
func AggregateHours(records []core.Record) []core.AttorneyHours {
	if len(records) == 0 {
		return nil
	}
	nameKey := schema.InferNameKey(records, schema.AttorneyKeys)
	if nameKey == "" {
		return nil
	}
	hourCols := schema.FindColumns(records, schema.HoursInclude, schema.HoursExclude)
	if len(hourCols) == 0 {
		hourCols = schema.FindColumns(records, schema.DurationInclude, schema.DurationExclude)
	}
	if len(hourCols) == 0 {
		return nil
	}

	_, totals := schema.SelectHourColumn(records, nameKey, hourCols)
	if len(totals) == 0 {
		return nil
	}

	out := make([]core.AttorneyHours, 0, len(totals))
	for name, hours := range totals {
		out = append(out, core.AttorneyHours{Name: name, Hours: core.Round2(hours)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AggregateYTDTime buckets time records into "YYYY-MM" totals from January
// through the current month, zero-filling months with no data.
func AggregateYTDTime(records []core.Record, now time.Time) []core.MonthHours {
	monthKeys := core.MonthKeyRange(core.StartOfYear(now), now)
	monthly := map[string]float64{}

	dateKey := schema.InferDateKey(records, schema.TimeDateKeys)
	if dateKey != "" {
		timeCols := schema.FindColumns(records, schema.HoursInclude, schema.HoursExclude)
		if len(timeCols) == 0 {
			timeCols = schema.FindColumns(records, schema.DurationInclude, schema.DurationExclude)
		}
		for _, rec := range records {
			date, ok := core.ParseDate(rec.Get(dateKey))
			if !ok {
				continue
			}
			hours := schema.SumColumns(rec, timeCols)
			if hours == 0 {
				continue
			}
			monthly[core.MonthKey(date)] += hours
		}
	}

	out := make([]core.MonthHours, len(monthKeys))
	for i, key := range monthKeys {
		out[i] = core.MonthHours{Date: key, Hours: core.Round2(monthly[key])}
	}
	return out
}

// BuildWeeklySeries emits the trailing 12 week buckets ending at the current
// week, oldest first. Weeks absent from the map emit as zero so the series
// length is always exactly 12.
func BuildWeeklySeries(weekly map[string]float64, now time.Time) []core.WeekPoint {
	points := make([]core.WeekPoint, 0, 12)
	for i := 11; i >= 0; i-- {
		weekStart := core.WeekStart(now.AddDate(0, 0, -7*i))
		points = append(points, core.WeekPoint{
			Week:   core.WeekLabel(weekStart),
			Amount: core.Round2(weekly[core.DayKey(weekStart)]),
		})
	}
	return points
}
