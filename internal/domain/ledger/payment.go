package ledger

import (
	"time"

	"card_reminder_bot/internal/domain/billing"
)

// PaymentRecord is one "bill paid" mark for a card and billing month.
// Created by an explicit user action and removed only by an explicit undo;
// never mutated otherwise. OnTime and DueDateAtMarking are computed once at
// marking time and never recomputed, so later due-day edits cannot rewrite
// payment history.
type PaymentRecord struct {
	ID               int64
	CardID           string
	BillingMonth     billing.MonthKey
	MarkedAt         time.Time
	DueDateAtMarking time.Time
	OnTime           bool
	CreatedAt        time.Time
}

// PaidMonths collapses records to the month set the resolver consumes.
func PaidMonths(records []*PaymentRecord) map[billing.MonthKey]bool {
	months := make(map[billing.MonthKey]bool, len(records))
	for _, r := range records {
		months[r.BillingMonth] = true
	}
	return months
}
