// internal/domain/billing/cycle.go
package billing

import "time"

// CycleReason records which branch of the resolution picked the cycle.
// Diagnostic only; no behavior hangs off it.
type CycleReason string

const (
	ReasonCurrentMonthUnpaid CycleReason = "current_month_unpaid"
	ReasonNextMonthPaid      CycleReason = "next_month_paid"
	ReasonNextMonthUnpaid    CycleReason = "next_month_unpaid"
)

// Cycle is the single authoritative billing cycle for a card at a point in
// time. It is derived on every query and never persisted.
type Cycle struct {
	Year         int
	Month        time.Month
	DueDate      time.Time
	DaysUntilDue int
	IsPaid       bool
	Reason       CycleReason
}

// MonthKey returns the cycle's billing month key.
func (c Cycle) MonthKey() MonthKey {
	return NewMonthKey(c.Year, c.Month)
}

// IsOverdue reports whether the cycle is unpaid and past its due date.
func (c Cycle) IsOverdue() bool {
	return !c.IsPaid && c.DaysUntilDue < 0
}

// DaysOverdue returns how many days past due the cycle is, 0 if not overdue.
func (c Cycle) DaysOverdue() int {
	if !c.IsOverdue() {
		return 0
	}
	return -c.DaysUntilDue
}

// IsDueToday reports whether the unpaid cycle's due date is today.
func (c Cycle) IsDueToday() bool {
	return !c.IsPaid && c.DaysUntilDue == 0
}
