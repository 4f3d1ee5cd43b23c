package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date truncates t to its calendar day, expressed as UTC midnight. The day is
// taken in t's own location, so convert with t.In(loc) first when a tenant
// timezone applies.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC-midnight date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalidInput(fmt.Sprintf("date %q must be YYYY-MM-DD", s))
	}
	return t, nil
}

// DaysBetween returns the number of calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// Month is a calendar month key in YYYY-MM form.
type Month string

const monthLayout = "2006-01"

// MonthOf returns the month key containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

// ParseMonth validates a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	if _, err := time.Parse(monthLayout, s); err != nil {
		return "", invalidInput(fmt.Sprintf("month %q must be YYYY-MM", s))
	}
	return Month(s), nil
}

// FirstDay returns the first calendar day of the month.
func (m Month) FirstDay() time.Time {
	t, _ := time.Parse(monthLayout, string(m))
	return t
}

// LastDay returns the last calendar day of the month.
func (m Month) LastDay() time.Time {
	return m.FirstDay().AddDate(0, 1, -1)
}

// Previous returns the month before m.
func (m Month) Previous() Month {
	return MonthOf(m.FirstDay().AddDate(0, -1, 0))
}

func (m Month) String() string { return string(m) }

// TimeRange is a half-open instant range [From, To). A zero range matches everything.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the range is unbounded.
func (r TimeRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	return !t.Before(r.From) && t.Before(r.To)
}

// DayWindow converts an inclusive calendar date range into the instant range
// covering those days in loc.
func DayWindow(from, to time.Time, loc *time.Location) TimeRange {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return TimeRange{From: start, To: end}
}
