// internal/domain/billing/calendar.go
package billing

import (
	"fmt"
	"time"
)

// MonthKey identifies a billing month, e.g. "2025-03".
type MonthKey string

// NewMonthKey builds a MonthKey from a year and month.
func NewMonthKey(year int, month time.Month) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, int(month)))
}

// MonthKeyOf returns the MonthKey of the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return NewMonthKey(t.Year(), t.Month())
}

// ParseMonthKey parses a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", string(s))
	if err != nil {
		return "", fmt.Errorf("invalid billing month %q: %w", s, err)
	}
	return NewMonthKey(t.Year(), t.Month()), nil
}

// Date returns the key's year and month.
func (k MonthKey) Date() (int, time.Month) {
	t, err := time.Parse("2006-01", string(k))
	if err != nil {
		return 0, 0
	}
	return t.Year(), t.Month()
}

// Next returns the following month's key, rolling the year in December.
func (k MonthKey) Next() MonthKey {
	year, month := k.Date()
	if month == time.December {
		return NewMonthKey(year+1, time.January)
	}
	return NewMonthKey(year, month+1)
}

func (k MonthKey) String() string {
	return string(k)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month, loc *time.Location) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// DueDate constructs the due date for a month from a fixed day-of-month,
// clamping days that exceed the month's length (31 in a 30-day month falls
// on the 30th, never rolls into the next month).
func DueDate(year int, month time.Month, dueDay int, loc *time.Location) time.Time {
	last := LastDayOfMonth(year, month, loc)
	if dueDay > last {
		dueDay = last
	}
	if dueDay < 1 {
		dueDay = 1
	}
	return time.Date(year, month, dueDay, 0, 0, 0, 0, loc)
}

// DaysBetween returns the civil-day difference to minus from, ignoring the
// time-of-day part of both. Negative when to is before from.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// Clock supplies the current time. Injected so tests control it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used in production.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
