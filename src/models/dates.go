package models

import (
	"strings"
	"time"
)

// dateLayouts are the cell formats accepted from the spreadsheets: ISO dates
// plus the day-first forms common in exported Excel sheets.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
}

// ParseDate parses a raw date cell and normalizes it to midnight UTC, so that
// dates compare and bucket by calendar day regardless of source formatting.
// row is the 1-based source row, carried into the error for context.
func ParseDate(raw string, row int) (time.Time, error) {
	cell := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, &InvalidDateError{Raw: raw, Row: row}
}

// Day truncates a time to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
