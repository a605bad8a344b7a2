package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one row or object from an upstream source. Field names are not
// fixed: different report exports and collection endpoints return different
// keys for conceptually identical data ("payment_date" vs "date" vs
// "applied_at"), so everything downstream reads fields defensively.
type Record map[string]any

// Get returns the string form of a field. Numbers are formatted without an
// exponent, nested objects resolve to their "name"-like member, and missing
// fields return "".
func (r Record) Get(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		for _, k := range []string{"name", "display_name", "label"} {
			if s, ok := t[k].(string); ok {
				return strings.TrimSpace(s)
			}
		}
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// AttorneyHours is the per-timekeeper total for the reporting window.
type AttorneyHours struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// WeekPoint is one bucket of the trailing weekly revenue series. Week is a
// "M/D" label of the week's Sunday.
type WeekPoint struct {
	Week   string  `json:"week"`
	Amount float64 `json:"amount"`
}

// MonthHours is one "YYYY-MM" bucket of the year-to-date time series.
type MonthHours struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// MonthAmount is one "YYYY-MM" bucket of the year-to-date revenue series.
type MonthAmount struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// DashboardData is the assembled result handed to the UI layer. It is built
// fresh on every load and never mutated after being returned.
type DashboardData struct {
	MonthlyDeposits       float64         `json:"monthlyDeposits"`
	AttorneyBillableHours []AttorneyHours `json:"attorneyBillableHours"`
	WeeklyRevenue         []WeekPoint     `json:"weeklyRevenue"`
	YTDTime               []MonthHours    `json:"ytdTime"`
	YTDRevenue            []MonthAmount   `json:"ytdRevenue"`
}

// IsZero reports whether every metric in the dashboard is empty or zero.
// Used by the configurable sample-data fallback policy.
func (d DashboardData) IsZero() bool {
	if d.MonthlyDeposits != 0 {
		return false
	}
	for _, a := range d.AttorneyBillableHours {
		if a.Hours != 0 {
			return false
		}
	}
	for _, w := range d.WeeklyRevenue {
		if w.Amount != 0 {
			return false
		}
	}
	for _, m := range d.YTDTime {
		if m.Hours != 0 {
			return false
		}
	}
	for _, m := range d.YTDRevenue {
		if m.Amount != 0 {
			return false
		}
	}
	return true
}
