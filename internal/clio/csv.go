package clio

import (
	"strings"

	"github.com/joshnel2/dnzdashboard/internal/core"
)

// ParseCSV converts a CSV report body to records keyed by header name.
//
// The parser is deliberately hand-rolled rather than encoding/csv: report
// exports produce ragged rows (trailing summary lines with fewer cells than
// the header) that the standard reader rejects, and the header may carry a
// UTF-8 byte order mark. Quoted fields, embedded commas and newlines, and
// doubled-quote escapes are handled per RFC 4180.
func ParseCSV(text string) []core.Record {
	var (
		rows    [][]string
		current []string
		field   strings.Builder
		quoted  bool
	)

	endField := func() {
		current = append(current, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		rows = append(rows, current)
		current = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if quoted && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				quoted = !quoted
			}
		case ch == ',' && !quoted:
			endField()
		case (ch == '\n' || ch == '\r') && !quoted:
			if ch == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			field.WriteRune(ch)
		}
	}
	if field.Len() > 0 || len(current) > 0 {
		endRow()
	}

	if len(rows) == 0 {
		return nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")

	var records []core.Record
	for _, row := range rows[1:] {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		rec := make(core.Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}
