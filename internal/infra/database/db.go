package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the schema if it does not exist. The bot is a single
// binary, so the schema ships with it rather than with a migration tool.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			issuer TEXT NOT NULL DEFAULT '',
			due_day INT NOT NULL CHECK (due_day BETWEEN 1 AND 31),
			notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS payment_records (
			id BIGSERIAL PRIMARY KEY,
			card_id UUID NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			billing_month CHAR(7) NOT NULL,
			marked_at TIMESTAMPTZ NOT NULL,
			due_date_at_marking DATE NOT NULL,
			on_time BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT card_month_unique UNIQUE (card_id, billing_month)
		)`,
		`CREATE TABLE IF NOT EXISTS rule_sets (
			card_id TEXT PRIMARY KEY, -- card UUID, or 'default' for the global set
			rules JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS scheduled_notifications (
			identifier TEXT PRIMARY KEY,
			card_id UUID NOT NULL,
			fire_at TIMESTAMPTZ NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			sent_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS scheduled_notifications_due_idx
			ON scheduled_notifications (fire_at) WHERE sent_at IS NULL`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run schema statement: %w", err)
		}
	}
	return nil
}
