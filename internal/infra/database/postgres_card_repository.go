package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"card_reminder_bot/internal/domain/card"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrCardNotFound = fmt.Errorf("card not found")
var ErrDuplicateCardName = fmt.Errorf("card with this name already exists")

type PostgresCardRepository struct {
	db *sql.DB
}

func NewPostgresCardRepository(db *sql.DB) *PostgresCardRepository {
	return &PostgresCardRepository{db: db}
}

func (r *PostgresCardRepository) Create(ctx context.Context, c *card.Card) error {
	query := `INSERT INTO cards (id, name, issuer, due_day, notifications_enabled)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Issuer, c.DueDay, c.NotificationsEnabled).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") && strings.Contains(err.Error(), "cards_name_key") {
			return ErrDuplicateCardName
		}
		return fmt.Errorf("error creating card: %w", err)
	}
	return nil
}

func (r *PostgresCardRepository) GetByID(ctx context.Context, id string) (*card.Card, error) {
	query := `SELECT id, name, issuer, due_day, notifications_enabled, created_at, updated_at
               FROM cards WHERE id = $1`
	c := &card.Card{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Issuer, &c.DueDay, &c.NotificationsEnabled, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("error getting card by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCardRepository) GetByName(ctx context.Context, name string) (*card.Card, error) {
	query := `SELECT id, name, issuer, due_day, notifications_enabled, created_at, updated_at
               FROM cards WHERE name = $1`
	c := &card.Card{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.Name, &c.Issuer, &c.DueDay, &c.NotificationsEnabled, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("error getting card by name: %w", err)
	}
	return c, nil
}

func (r *PostgresCardRepository) Update(ctx context.Context, c *card.Card) error {
	query := `UPDATE cards
               SET name = $1, issuer = $2, due_day = $3, notifications_enabled = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.Issuer, c.DueDay, c.NotificationsEnabled, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCardNotFound
		}
		return fmt.Errorf("error updating card: %w", err)
	}
	return nil
}

func (r *PostgresCardRepository) List(ctx context.Context) ([]*card.Card, error) {
	query := `SELECT id, name, issuer, due_day, notifications_enabled, created_at, updated_at
               FROM cards ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing cards: %w", err)
	}
	defer rows.Close()

	cards := make([]*card.Card, 0)
	for rows.Next() {
		c := &card.Card{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Issuer, &c.DueDay, &c.NotificationsEnabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning card: %w", err)
		}
		cards = append(cards, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}

func (r *PostgresCardRepository) SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error {
	query := `UPDATE cards SET notifications_enabled = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, enabled, id)
	if err != nil {
		return fmt.Errorf("error setting card notification flag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *PostgresCardRepository) SetAllNotificationsEnabled(ctx context.Context, enabled bool) error {
	query := `UPDATE cards SET notifications_enabled = $1, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, enabled); err != nil {
		return fmt.Errorf("error setting all card notification flags: %w", err)
	}
	return nil
}
