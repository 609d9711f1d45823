// Package timeutil converts between the engine's wire formats for time of day
// ("HH:MM" strings, minutes since midnight) and calendar dates ("YYYY-MM-DD").
// All times are wall-clock minutes in a single implicit zone.
package timeutil

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout is the calendar date format used everywhere in the engine.
	DateLayout = "2006-01-02"

	// MinutesPerDay is the exclusive upper bound for a shift start and the
	// inclusive upper bound for a shift end ("24:00").
	MinutesPerDay = 1440
)

// ErrInvalidTimeFormat reports a malformed "HH:MM" string.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// TimeToMinutes parses "HH:MM" into minutes since midnight. The special value
// "24:00" is accepted and yields 1440. Anything else outside 00:00-23:59
// fails with ErrInvalidTimeFormat.
func TimeToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	h, err := twoDigits(s[0], s[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	m, err := twoDigits(s[3], s[4])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	if h > 24 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	return h*60 + m, nil
}

func twoDigits(a, b byte) (int, error) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, ErrInvalidTimeFormat
	}
	return int(a-'0')*10 + int(b-'0'), nil
}

// MinutesToTime is the inverse of TimeToMinutes for m in [0, 1440].
// 1440 renders as "24:00".
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// FormatDate renders a date as "YYYY-MM-DD".
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// AddDays returns the date n days after d.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// StartOfWeek returns the Monday of the week containing d. Sundays count as
// day 7 of the previous week, so the returned Monday always precedes them.
func StartOfWeek(d time.Time) time.Time {
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return d.AddDate(0, 0, -(weekday - 1))
}

// WeekdayIndex returns d's weekday with Sunday=0, the indexing used by
// RecurrenceConfig.Days.
func WeekdayIndex(d time.Time) int {
	return int(d.Weekday())
}
