// internal/infra/database/postgres_payment_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/domain/ledger"
)

// Custom errors specific to the payment ledger
var ErrPaymentNotFound = fmt.Errorf("payment record not found")
var ErrDuplicatePayment = fmt.Errorf("duplicate payment record (card_id, billing_month)")

type PostgresPaymentRepository struct {
	db *sql.DB
}

func NewPostgresPaymentRepository(db *sql.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

func (r *PostgresPaymentRepository) Create(ctx context.Context, rec *ledger.PaymentRecord) error {
	query := `INSERT INTO payment_records (card_id, billing_month, marked_at, due_date_at_marking, on_time)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, rec.CardID, rec.BillingMonth.String(), rec.MarkedAt, rec.DueDateAtMarking, rec.OnTime).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "card_month_unique") {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("error creating payment record: %w", err)
	}
	return nil
}

func (r *PostgresPaymentRepository) Get(ctx context.Context, cardID string, month billing.MonthKey) (*ledger.PaymentRecord, error) {
	query := `SELECT id, card_id, billing_month, marked_at, due_date_at_marking, on_time, created_at
               FROM payment_records
               WHERE card_id = $1 AND billing_month = $2`
	rec := ledger.PaymentRecord{}
	var monthStr string
	err := r.db.QueryRowContext(ctx, query, cardID, month.String()).Scan(
		&rec.ID, &rec.CardID, &monthStr, &rec.MarkedAt, &rec.DueDateAtMarking, &rec.OnTime, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("error getting payment record: %w", err)
	}
	rec.BillingMonth = billing.MonthKey(strings.TrimSpace(monthStr))
	return &rec, nil
}

func (r *PostgresPaymentRepository) ListByCard(ctx context.Context, cardID string) ([]*ledger.PaymentRecord, error) {
	query := `SELECT id, card_id, billing_month, marked_at, due_date_at_marking, on_time, created_at
               FROM payment_records
               WHERE card_id = $1 ORDER BY billing_month`
	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("error querying payment records by card: %w", err)
	}
	defer rows.Close()

	records := make([]*ledger.PaymentRecord, 0)
	for rows.Next() {
		rec := ledger.PaymentRecord{}
		var monthStr string
		if err := rows.Scan(&rec.ID, &rec.CardID, &monthStr, &rec.MarkedAt, &rec.DueDateAtMarking, &rec.OnTime, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning payment record row: %w", err)
		}
		rec.BillingMonth = billing.MonthKey(strings.TrimSpace(monthStr))
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment record rows: %w", err)
	}
	return records, nil
}

func (r *PostgresPaymentRepository) Delete(ctx context.Context, cardID string, month billing.MonthKey) error {
	// Deleting an absent record is a no-op per the ledger contract.
	query := `DELETE FROM payment_records WHERE card_id = $1 AND billing_month = $2`
	if _, err := r.db.ExecContext(ctx, query, cardID, month.String()); err != nil {
		return fmt.Errorf("error deleting payment record: %w", err)
	}
	return nil
}
