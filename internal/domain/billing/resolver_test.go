package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func TestResolveCurrentMonthUnpaid(t *testing.T) {
	cycle := Resolve(15, nil, at(2025, time.March, 10, 8))

	assert.Equal(t, 2025, cycle.Year)
	assert.Equal(t, time.March, cycle.Month)
	assert.Equal(t, at(2025, time.March, 15, 0), cycle.DueDate)
	assert.Equal(t, 5, cycle.DaysUntilDue)
	assert.False(t, cycle.IsPaid)
	assert.Equal(t, ReasonCurrentMonthUnpaid, cycle.Reason)
}

func TestResolveOverdueCurrentMonth(t *testing.T) {
	cycle := Resolve(15, nil, at(2025, time.March, 20, 8))

	assert.Equal(t, time.March, cycle.Month)
	assert.Equal(t, -5, cycle.DaysUntilDue)
	assert.True(t, cycle.IsOverdue())
	assert.Equal(t, 5, cycle.DaysOverdue())
}

func TestResolveRollsToNextMonthWhenCurrentPaid(t *testing.T) {
	paid := map[MonthKey]bool{"2025-03": true}
	cycle := Resolve(15, paid, at(2025, time.March, 25, 12))

	assert.Equal(t, 2025, cycle.Year)
	assert.Equal(t, time.April, cycle.Month)
	assert.Equal(t, at(2025, time.April, 15, 0), cycle.DueDate)
	assert.Equal(t, 21, cycle.DaysUntilDue)
	assert.False(t, cycle.IsPaid)
	assert.Equal(t, ReasonNextMonthUnpaid, cycle.Reason)
}

func TestResolveEarlyPaymentRollForward(t *testing.T) {
	// Both the current and the next month are marked paid: the resolver
	// returns the next-month cycle already flagged paid.
	paid := map[MonthKey]bool{"2025-03": true, "2025-04": true}
	cycle := Resolve(15, paid, at(2025, time.March, 25, 12))

	assert.Equal(t, time.April, cycle.Month)
	assert.True(t, cycle.IsPaid)
	assert.Equal(t, ReasonNextMonthPaid, cycle.Reason)
}

func TestResolveDecemberRollsYear(t *testing.T) {
	paid := map[MonthKey]bool{"2025-12": true}
	cycle := Resolve(15, paid, at(2025, time.December, 20, 10))

	assert.Equal(t, 2026, cycle.Year)
	assert.Equal(t, time.January, cycle.Month)
	assert.Equal(t, at(2026, time.January, 15, 0), cycle.DueDate)
}

func TestResolveClampsDueDayInShortMonth(t *testing.T) {
	cycle := Resolve(31, nil, at(2025, time.April, 10, 9))

	assert.Equal(t, at(2025, time.April, 30, 0), cycle.DueDate)
	assert.Equal(t, 20, cycle.DaysUntilDue)
}

func TestResolveMonotonicCountdown(t *testing.T) {
	// With no payment this month, daysUntilDue decreases by exactly 1 per
	// simulated day, crosses zero on the due day, and goes negative after.
	prev := 0
	for day := 1; day <= 28; day++ {
		now := at(2025, time.March, day, 14)
		cycle := Resolve(15, nil, now)

		want := 15 - day
		assert.Equalf(t, want, cycle.DaysUntilDue, "day %d", day)
		if day > 1 {
			assert.Equalf(t, prev-1, cycle.DaysUntilDue, "day %d should drop by exactly 1", day)
		}
		prev = cycle.DaysUntilDue

		switch {
		case day < 15:
			assert.Falsef(t, cycle.IsOverdue(), "day %d", day)
			assert.Falsef(t, cycle.IsDueToday(), "day %d", day)
		case day == 15:
			assert.Truef(t, cycle.IsDueToday(), "day %d", day)
		default:
			assert.Truef(t, cycle.IsOverdue(), "day %d", day)
		}
	}
}

func TestResolveIsPureFunction(t *testing.T) {
	paid := map[MonthKey]bool{"2025-03": true}
	now := at(2025, time.March, 25, 12)

	first := Resolve(15, paid, now)
	second := Resolve(15, paid, now)
	assert.Equal(t, first, second)
}
