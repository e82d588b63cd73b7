package model

import "time"

// DateLayout is the canonical textual form of a calendar date.
const DateLayout = "2006-01-02"

// DateOnly keeps the calendar date of t (in t's own location) and drops the time of day.
// The result is midnight UTC so that dates compare and sort the same way everywhere.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// DayKey formats the calendar date of t for use as a map key.
func DayKey(t time.Time) string {
	return DateOnly(t).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// AddMonths moves t by n months, clamping the day to the end of the target month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
