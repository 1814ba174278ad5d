// internal/infra/database/postgres_settings_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
)

const keyGlobalNotificationsEnabled = "global_notifications_enabled"

type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// GlobalNotificationsEnabled returns the stored value of the global switch.
// Defaults to enabled when no global action has ever been taken.
func (r *PostgresSettingsRepository) GlobalNotificationsEnabled(ctx context.Context) (bool, error) {
	query := `SELECT value FROM app_settings WHERE key = $1`
	var value string
	err := r.db.QueryRowContext(ctx, query, keyGlobalNotificationsEnabled).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return true, nil
		}
		return false, fmt.Errorf("error getting global notification switch: %w", err)
	}
	return value == "true", nil
}

func (r *PostgresSettingsRepository) SetGlobalNotificationsEnabled(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	query := `INSERT INTO app_settings (key, value) VALUES ($1, $2)
               ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, keyGlobalNotificationsEnabled, value); err != nil {
		return fmt.Errorf("error setting global notification switch: %w", err)
	}
	return nil
}
