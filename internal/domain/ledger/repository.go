package ledger

import (
	"context"

	"card_reminder_bot/internal/domain/billing"
)

// Repository defines the append-only payment ledger. The store must enforce
// at most one record per (cardID, billingMonth).
type Repository interface {
	ListByCard(ctx context.Context, cardID string) ([]*PaymentRecord, error)
	Get(ctx context.Context, cardID string, month billing.MonthKey) (*PaymentRecord, error)
	// Create inserts a record; a record already present for the same
	// (cardID, billingMonth) must surface as a duplicate, never a second row.
	Create(ctx context.Context, r *PaymentRecord) error
	// Delete removes the record for the key. Deleting an absent record is not
	// an error.
	Delete(ctx context.Context, cardID string, month billing.MonthKey) error
}
