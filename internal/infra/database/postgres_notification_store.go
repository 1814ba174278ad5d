// internal/infra/database/postgres_notification_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"card_reminder_bot/internal/domain/notify"
)

// PostgresNotificationStore is the durable implementation of notify.Gateway.
// Entries live in the scheduled_notifications table; the cron dispatcher
// delivers the due ones and marks them sent. Identifiers are primary keys,
// so a re-schedule with the same key replaces rather than duplicates.
type PostgresNotificationStore struct {
	db *sql.DB
	// permitted reports whether a delivery channel is configured at all.
	permitted func(ctx context.Context) bool
}

func NewPostgresNotificationStore(db *sql.DB, permitted func(ctx context.Context) bool) *PostgresNotificationStore {
	if permitted == nil {
		permitted = func(context.Context) bool { return true }
	}
	return &PostgresNotificationStore{db: db, permitted: permitted}
}

func (s *PostgresNotificationStore) ScheduleAt(ctx context.Context, sched notify.Scheduled) error {
	query := `INSERT INTO scheduled_notifications (identifier, card_id, fire_at, title, body)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (identifier) DO UPDATE
                 SET card_id = EXCLUDED.card_id, fire_at = EXCLUDED.fire_at,
                     title = EXCLUDED.title, body = EXCLUDED.body, sent_at = NULL`
	_, err := s.db.ExecContext(ctx, query, sched.Identifier, sched.CardID, sched.FireAt, sched.Content.Title, sched.Content.Body)
	if err != nil {
		return fmt.Errorf("error scheduling notification %s: %w", sched.Identifier, err)
	}
	return nil
}

func (s *PostgresNotificationStore) Cancel(ctx context.Context, identifier string) error {
	query := `DELETE FROM scheduled_notifications WHERE identifier = $1`
	if _, err := s.db.ExecContext(ctx, query, identifier); err != nil {
		return fmt.Errorf("error cancelling notification %s: %w", identifier, err)
	}
	return nil
}

func (s *PostgresNotificationStore) CancelAllForCard(ctx context.Context, cardID string) error {
	// Keyed on card_id rather than an identifier prefix scan; every
	// identifier the planner produces carries its card, so this is total.
	query := `DELETE FROM scheduled_notifications WHERE card_id = $1`
	if _, err := s.db.ExecContext(ctx, query, cardID); err != nil {
		return fmt.Errorf("error cancelling notifications for card %s: %w", cardID, err)
	}
	return nil
}

func (s *PostgresNotificationStore) HasPermission(ctx context.Context) bool {
	return s.permitted(ctx)
}

// ListDue returns unsent entries whose fire time has passed, oldest first.
func (s *PostgresNotificationStore) ListDue(ctx context.Context, now time.Time) ([]*notify.Scheduled, error) {
	query := `SELECT identifier, card_id, fire_at, title, body
               FROM scheduled_notifications
               WHERE sent_at IS NULL AND fire_at <= $1
               ORDER BY fire_at ASC`
	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("error querying due notifications: %w", err)
	}
	defer rows.Close()

	due := make([]*notify.Scheduled, 0)
	for rows.Next() {
		sched := notify.Scheduled{}
		if err := rows.Scan(&sched.Identifier, &sched.CardID, &sched.FireAt, &sched.Content.Title, &sched.Content.Body); err != nil {
			return nil, fmt.Errorf("error scanning due notification row: %w", err)
		}
		due = append(due, &sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due notification rows: %w", err)
	}
	return due, nil
}

// MarkSent records delivery so the entry is not dispatched again.
func (s *PostgresNotificationStore) MarkSent(ctx context.Context, identifier string, at time.Time) error {
	query := `UPDATE scheduled_notifications SET sent_at = $1 WHERE identifier = $2`
	if _, err := s.db.ExecContext(ctx, query, at, identifier); err != nil {
		return fmt.Errorf("error marking notification %s sent: %w", identifier, err)
	}
	return nil
}
