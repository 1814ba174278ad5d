// internal/domain/billing/resolver.go
package billing

import "time"

// Resolve computes the single authoritative billing cycle for a card with the
// given due day-of-month, from the set of billing months the ledger already
// holds a payment record for. It is a pure function of its arguments.
//
// Anchoring on "is the current month's record present" makes the resolution
// self-correcting from the ledger alone: an unpaid current month stays
// authoritative however far past due it runs, and a paid current month moves
// authority to the next month, which may itself already be paid ahead.
func Resolve(dueDay int, paidMonths map[MonthKey]bool, now time.Time) Cycle {
	loc := now.Location()
	currentKey := MonthKeyOf(now)

	year, month := now.Year(), now.Month()
	reason := ReasonCurrentMonthUnpaid
	paid := false

	if paidMonths[currentKey] {
		// Current month is settled; the next month becomes authoritative.
		nextKey := currentKey.Next()
		year, month = nextKey.Date()
		if paidMonths[nextKey] {
			reason = ReasonNextMonthPaid
			paid = true
		} else {
			reason = ReasonNextMonthUnpaid
		}
	}

	due := DueDate(year, month, dueDay, loc)
	return Cycle{
		Year:         year,
		Month:        month,
		DueDate:      due,
		DaysUntilDue: DaysBetween(now, due),
		IsPaid:       paid,
		Reason:       reason,
	}
}
