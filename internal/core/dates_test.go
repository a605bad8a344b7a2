package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in         string
		y, m, d    int
		ok         bool
	}{
		{"2025-04", 2025, 4, 1, true},
		{"2025-04-10", 2025, 4, 10, true},
		{"Invoice 2025-04-10 final", 2025, 4, 10, true},
		{"4/10/2025", 2025, 4, 10, true},
		{"4/1/25", 2025, 4, 1, true},
		{"paid on 12/31/24", 2024, 12, 31, true},
		{"2025-04-10T13:45:00Z", 2025, 4, 10, true},
		{"Jan 2, 2025", 2025, 1, 2, true},
		{"2025-13", 0, 0, 0, false},
		{"not a date", 0, 0, 0, false},
		{"", 0, 0, 0, false},
		{"13/45/2025", 0, 0, 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if got.Year() != tc.y || int(got.Month()) != tc.m || got.Day() != tc.d {
			t.Fatalf("ParseDate(%q) = %v, want %d-%d-%d", tc.in, got, tc.y, tc.m, tc.d)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Fatalf("ParseDate(%q) not midnight-normalized: %v", tc.in, got)
		}
	}
}

func TestParseDateDeterministic(t *testing.T) {
	a, _ := ParseDate("3/5/2025")
	b, _ := ParseDate("3/5/2025")
	if !a.Equal(b) {
		t.Fatalf("same input parsed differently: %v vs %v", a, b)
	}
}

func TestWeekStart(t *testing.T) {
	// 2025-03-05 is a Wednesday; its week starts Sunday 2025-03-02.
	wed := time.Date(2025, 3, 5, 15, 30, 0, 0, time.Local)
	ws := WeekStart(wed)
	if ws.Weekday() != time.Sunday {
		t.Fatalf("week start is %v, want Sunday", ws.Weekday())
	}
	if DayKey(ws) != "2025-03-02" {
		t.Fatalf("week start = %s, want 2025-03-02", DayKey(ws))
	}
	// A Sunday is its own week start.
	sun := time.Date(2025, 3, 2, 8, 0, 0, 0, time.Local)
	if DayKey(WeekStart(sun)) != "2025-03-02" {
		t.Fatalf("Sunday should be its own week start, got %s", DayKey(WeekStart(sun)))
	}
}

func TestMonthKeyRange(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2025, 5, 20, 0, 0, 0, 0, time.Local)
	keys := MonthKeyRange(start, end)
	want := []string{"2025-01", "2025-02", "2025-03", "2025-04", "2025-05"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d: %v", len(keys), len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
	// Year boundary.
	keys = MonthKeyRange(time.Date(2024, 11, 3, 0, 0, 0, 0, time.Local), time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local))
	if len(keys) != 4 || keys[0] != "2024-11" || keys[3] != "2025-02" {
		t.Fatalf("year boundary range wrong: %v", keys)
	}
}

func TestWeekLabel(t *testing.T) {
	d := time.Date(2025, 3, 2, 0, 0, 0, 0, time.Local)
	if got := WeekLabel(d); got != "3/2" {
		t.Fatalf("WeekLabel = %q, want 3/2", got)
	}
}
