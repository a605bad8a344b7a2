// Package schema infers which field of a batch of heterogeneous records
// carries a given semantic role (name, date, hours, revenue amount).
//
// Report exports are configurable by the data owner, so column names vary
// deployment to deployment. Inference is heuristic-first: ordered keyword
// preference tables matched against the observed key set, with content
// sniffing as the fallback. All heuristics are table-driven so new upstream
// field-name variants are added as data, not control flow.
package schema

import (
	"sort"
	"strings"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

// Role is the semantic meaning assigned to an inferred column.
type Role int

const (
	RoleName Role = iota
	RoleDate
	RoleHours
	RoleRevenue
)

// Preference tables. Each group is a set of substrings that must all appear
// (case- and punctuation-insensitive) in a candidate column name; groups are
// tried in order and the first group with any match wins.
var (
	RevenueDateKeys = [][]string{
		{"payment", "date"},
		{"collection", "date"},
		{"collected", "date"},
		{"deposit", "date"},
		{"transaction", "date"},
		{"activity", "date"},
		{"invoice", "date"},
		{"date"},
	}

	TimeDateKeys = [][]string{
		{"entry", "date"},
		{"activity", "date"},
		{"work", "date"},
		{"date"},
		{"month"},
	}

	AttorneyKeys = [][]string{
		{"timekeeper"},
		{"user"},
		{"attorney"},
		{"responsible", "attorney"},
		{"originating", "attorney"},
		{"billing", "attorney"},
		{"lawyer"},
		{"name"},
	}

	HoursColumnOrder = [][]string{
		{"billable", "hours"},
		{"billed", "hours"},
		{"hours", "billed"},
		{"hours", "worked"},
		{"worked", "hours"},
		{"recorded", "hours"},
		{"hours"},
	}
)

// Keyword filters for amount columns. Include matches select a column,
// exclude matches veto it (rates, targets and unpaid balances look like
// money or hours but are not).
var (
	RevenueInclude = []string{"collect", "payment", "receipt", "paid", "deposit", "revenue"}
	RevenueExclude = []string{"uncollect", "unpaid", "outstanding", "balance", "writeoff", "discount", "unbilled"}

	HoursInclude = []string{"hour"}
	HoursExclude = []string{"rate", "target", "percent", "percentage", "utilization", "budget", "capacity", "goal"}

	DurationInclude = []string{"duration", "quantity"}
	DurationExclude = []string{"rate", "target", "percent", "percentage", "utilization", "amount", "value"}

	// Collection endpoints name the money field generically ("total" on
	// payment activities); tried only when no include keyword matched.
	RevenueFallback = []string{"total", "amount"}
)

const (
	sniffSampleSize = 10
	sniffThreshold  = 0.7
)

func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// keys returns the union of field names across the batch, sorted so that
// inference is deterministic regardless of map iteration order.
func keys(records []core.Record) []string {
	seen := map[string]struct{}{}
	for _, rec := range records {
		for k := range rec {
			if k != "" {
				seen[k] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FindKey returns the first column matching the highest-priority preference
// group across the batch's full key set, or "" when nothing matches.
func FindKey(records []core.Record, prefs [][]string) string {
	return matchKey(keys(records), prefs)
}

func matchKey(candidates []string, prefs [][]string) string {
	type normalized struct{ key, norm string }
	norms := make([]normalized, len(candidates))
	for i, k := range candidates {
		norms[i] = normalized{k, normalizeKey(k)}
	}
	for _, tokens := range prefs {
		for _, n := range norms {
			if containsAll(n.norm, tokens) {
				return n.key
			}
		}
	}
	return ""
}

func containsAll(norm string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(norm, normalizeKey(tok)) {
			return false
		}
	}
	return true
}

// FindColumns returns every column whose name matches an include keyword and
// no exclude keyword. Multiple matches are meaningful: amounts split across
// columns are summed per row by the aggregation layer.
func FindColumns(records []core.Record, include, exclude []string) []string {
	var out []string
	for _, k := range keys(records) {
		norm := normalizeKey(k)
		hit := false
		for _, kw := range include {
			if strings.Contains(norm, normalizeKey(kw)) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		vetoed := false
		for _, kw := range exclude {
			if strings.Contains(norm, normalizeKey(kw)) {
				vetoed = true
				break
			}
		}
		if !vetoed {
			out = append(out, k)
		}
	}
	return out
}

// OrderByPreference reorders columns so those matching earlier preference
// groups come first; unmatched columns keep their relative order at the end.
func OrderByPreference(columns []string, prefs [][]string) []string {
	if len(columns) <= 1 {
		return columns
	}
	remaining := append([]string(nil), columns...)
	var ordered []string
	for _, tokens := range prefs {
		for i, col := range remaining {
			if containsAll(normalizeKey(col), tokens) {
				ordered = append(ordered, col)
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return append(ordered, remaining...)
}

// InferDateKey finds the DATE column: preference tables first, then content
// sniffing over a small sample.
func InferDateKey(records []core.Record, prefs [][]string) string {
	if key := FindKey(records, prefs); key != "" {
		return key
	}
	return sniffKey(records, func(v string) bool {
		_, ok := core.ParseDate(v)
		return ok
	})
}

// InferNameKey finds the NAME column: preference tables first, then sniffing
// for columns of short non-numeric, non-date text.
func InferNameKey(records []core.Record, prefs [][]string) string {
	if key := FindKey(records, prefs); key != "" {
		return key
	}
	return sniffKey(records, func(v string) bool {
		if len(v) <= 2 {
			return false
		}
		if _, ok := core.ParseDate(v); ok {
			return false
		}
		return core.ParseAmount(v) == 0
	})
}

// sniffKey samples up to sniffSampleSize rows and returns the first column
// (in sorted order) where the match ratio over non-empty values clears the
// threshold.
func sniffKey(records []core.Record, match func(string) bool) string {
	sample := records
	if len(sample) > sniffSampleSize {
		sample = sample[:sniffSampleSize]
	}
	for _, k := range keys(records) {
		var total, hits int
		for _, rec := range sample {
			v := rec.Get(k)
			if v == "" {
				continue
			}
			total++
			if match(v) {
				hits++
			}
		}
		if total > 0 && float64(hits)/float64(total) > sniffThreshold {
			return k
		}
	}
	return ""
}

// InferColumn returns the single best column for a role, or "" when the
// batch has no plausible candidate. At most one column is ever selected per
// role, and the choice is deterministic for a given batch.
func InferColumn(records []core.Record, role Role) string {
	switch role {
	case RoleName:
		return InferNameKey(records, AttorneyKeys)
	case RoleDate:
		return InferDateKey(records, TimeDateKeys)
	case RoleHours:
		cols := OrderByPreference(FindColumns(records, HoursInclude, HoursExclude), HoursColumnOrder)
		if len(cols) > 0 {
			return cols[0]
		}
	case RoleRevenue:
		cols := FindColumns(records, RevenueInclude, RevenueExclude)
		if len(cols) > 0 {
			return cols[0]
		}
	}
	return ""
}

// SumColumns sums the parsed values of the given columns in one record.
func SumColumns(rec core.Record, columns []string) float64 {
	var total float64
	for _, col := range columns {
		total += core.ParseAmount(rec.Get(col))
	}
	return total
}

// SelectHourColumn picks the hour column to aggregate per name when several
// candidates exist. Preference order decides ties, but a column whose
// per-name totals actually vary beats one holding a constant placeholder,
// and any column with data beats an all-zero one.
func SelectHourColumn(records []core.Record, nameKey string, columns []string) (string, map[string]float64) {
	ordered := OrderByPreference(columns, HoursColumnOrder)
	if len(ordered) == 0 {
		return "", nil
	}

	type evaluation struct {
		totals      map[string]float64
		hasData     bool
		hasVariance bool
	}
	cache := map[string]evaluation{}
	evaluate := func(col string) evaluation {
		if ev, ok := cache[col]; ok {
			return ev
		}
		totals := totalsByName(records, nameKey, col)
		var nonZero []float64
		for _, v := range totals {
			if v > 0.01 || v < -0.01 {
				nonZero = append(nonZero, v)
			}
		}
		ev := evaluation{totals: totals, hasData: len(nonZero) > 0}
		if len(nonZero) > 1 {
			min, max := nonZero[0], nonZero[0]
			for _, v := range nonZero[1:] {
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
			ev.hasVariance = max-min > 0.01
		}
		cache[col] = ev
		return ev
	}

	for _, col := range ordered {
		if evaluate(col).hasVariance {
			return col, cache[col].totals
		}
	}
	for _, col := range ordered {
		if evaluate(col).hasData {
			return col, cache[col].totals
		}
	}
	return ordered[0], evaluate(ordered[0]).totals
}

func totalsByName(records []core.Record, nameKey, column string) map[string]float64 {
	totals := map[string]float64{}
	for _, rec := range records {
		name := rec.Get(nameKey)
		if name == "" {
			continue
		}
		v := core.ParseAmount(rec.Get(column))
		if v == 0 {
			continue
		}
		totals[name] += v
	}
	return totals
}
