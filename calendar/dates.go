package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the stored form of date-only values such as an order's due date.
	DateLayout = "2006-01-02"
	// InputLayout is the local date-time form used by edit buffers.
	InputLayout = "2006-01-02T15:04"
)

var (
	ErrEmptyDate   = errors.New("calendar: date is empty")
	ErrInvalidDate = errors.New("calendar: date could not be parsed")
)

// zone-less layouts, tried in order after RFC3339
var localLayouts = []string{
	"2006-01-02T15:04:05",
	InputLayout,
	DateLayout,
}

// ParseDate parses a stored date or date-time value. Values carrying an offset are
// converted into loc; values without one are read as wall-clock time in loc. A
// date-only value parses to midnight.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmptyDate
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// withDefaultHour replaces a bare midnight time-of-day with hour:00. Midnight is
// read as "no time supplied", so a genuine 00:00 appointment cannot be expressed.
func withDefaultHour(t time.Time, hour int) time.Time {
	if t.Hour() != 0 || t.Minute() != 0 {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

// DateOnly formats the calendar date of t in its own location.
func DateOnly(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatInputValue renders t's local wall-clock components for a date-time input.
// It never normalizes through UTC.
func FormatInputValue(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
