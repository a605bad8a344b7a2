package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
	isoDateRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashDateRe = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`)
)

// looseLayouts are the last-resort formats tried when no structured pattern
// matches the value. Report exports are free-form enough that all of these
// show up in practice.
var looseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseDate extracts a calendar date from a loosely formatted string.
// Recognized, in order: a bare "YYYY-MM" (first of month), an embedded ISO
// "YYYY-MM-DD", an embedded "M/D/YYYY" or "M/D/YY" (two-digit years are
// 2000+), then a set of generic layouts. Returns false, never panics, on
// anything else.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if yearMonthRe.MatchString(s) {
		year, _ := strconv.Atoi(s[:4])
		month, _ := strconv.Atoi(s[5:])
		if month < 1 || month > 12 {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local), true
	}

	if m := isoDateRe.FindString(s); m != "" {
		year, _ := strconv.Atoi(m[:4])
		month, _ := strconv.Atoi(m[5:7])
		day, _ := strconv.Atoi(m[8:])
		if t, ok := makeDate(year, month, day); ok {
			return t, true
		}
		return time.Time{}, false
	}

	if m := slashDateRe.FindString(s); m != "" {
		parts := strings.Split(m, "/")
		month, _ := strconv.Atoi(parts[0])
		day, _ := strconv.Atoi(parts[1])
		year, _ := strconv.Atoi(parts[2])
		if year < 100 {
			year += 2000
		}
		if t, ok := makeDate(year, month, day); ok {
			return t, true
		}
		return time.Time{}, false
	}

	for _, layout := range looseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Midnight(t), true
		}
	}

	return time.Time{}, false
}

func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1000 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// Midnight truncates a time to local midnight.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Sunday of the week containing t, at local midnight.
func WeekStart(t time.Time) time.Time {
	m := Midnight(t)
	return m.AddDate(0, 0, -int(m.Weekday()))
}

// StartOfMonth returns the first of t's month at local midnight.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfYear returns January 1 of t's year at local midnight.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// DayKey formats t as "YYYY-MM-DD" for use as a bucket key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// MonthKey formats t as "YYYY-MM" for use as a bucket key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// WeekLabel formats t as "M/D", the display label for weekly buckets.
func WeekLabel(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

// MonthKeyRange returns every "YYYY-MM" key from start's month through end's
// month inclusive, in ascending order. Series built from it never have a
// missing period.
func MonthKeyRange(start, end time.Time) []string {
	var keys []string
	cursor := StartOfMonth(start)
	last := StartOfMonth(end)
	for !cursor.After(last) {
		keys = append(keys, MonthKey(cursor))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return keys
}
