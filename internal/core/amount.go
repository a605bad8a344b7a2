// Package core provides the loosely-typed record model and the defensive
// number/date parsing the rest of the dashboard is built on.
//
// Upstream sources are not contractually typed: report exports are CSV text
// and collection endpoints mix string and numeric fields, so every numeric or
// date read goes through these normalizers instead of a direct conversion.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a loosely formatted currency or hours string to a
// float64. It never fails: empty or unparseable input yields 0.
//
// Accounting conventions are honored: a value wrapped in parentheses is
// negative, thousands separators are dropped, and currency symbols or other
// junk characters are stripped. When several decimal points survive
// stripping, only the last one is treated as the separator.
//
// Examples:
//
//	ParseAmount("$1,234.50")   -> 1234.5
//	ParseAmount("(1,234.50)")  -> -1234.5
//	ParseAmount("7.5 hrs")     -> 7.5
//	ParseAmount("n/a")         -> 0
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '(', r == ')', r == '-':
			b.WriteRune(r)
		}
	}
	s = b.String()

	negative := strings.Contains(s, "(") && strings.Contains(s, ")")
	s = strings.NewReplacer("(", "", ")", "", ",", "").Replace(s)
	if s == "" {
		return 0
	}

	// Keep only the last dot as the decimal separator.
	if strings.Count(s, ".") > 1 {
		last := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		return -v
	}
	return v
}

// Round2 rounds to two decimal places, half away from zero, with a small
// epsilon so values like 2.675 that float64 stores just below the midpoint
// still round up rather than producing display artifacts.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return math.Round((v+1e-9)*100) / 100
}
