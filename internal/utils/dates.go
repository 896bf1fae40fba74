package utils

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date format used in query parameters
const DateLayout = "2006-01-02"

// ParseDate parses a date accepting YYYY-MM-DD or RFC3339
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
}

// NormalizeDate truncates a timestamp to its calendar date
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDay returns the calendar date one day after t. It is used to make an
// end date inclusive of that day's full session when filtering half-open
// timestamp ranges.
func NextDay(t time.Time) time.Time {
	return NormalizeDate(t).AddDate(0, 0, 1)
}

// FormatDate renders a timestamp as YYYY-MM-DD text
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
