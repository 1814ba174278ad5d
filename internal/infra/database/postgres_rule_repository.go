// internal/infra/database/postgres_rule_repository.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"card_reminder_bot/internal/domain/rule"
)

// defaultRuleSetKey is the reserved row key for the global default set.
const defaultRuleSetKey = "default"

type PostgresRuleRepository struct {
	db *sql.DB
}

func NewPostgresRuleRepository(db *sql.DB) *PostgresRuleRepository {
	return &PostgresRuleRepository{db: db}
}

// storedRule is the JSONB shape of one rule.
type storedRule struct {
	ID               string   `json:"id"`
	DaysBefore       int      `json:"days_before"`
	Times            []string `json:"times"`
	Enabled          bool     `json:"enabled"`
	EscalationWindow int      `json:"escalation_window,omitempty"`
}

func encodeSet(s rule.Set) ([]byte, error) {
	stored := make([]storedRule, 0, len(s.Rules))
	for _, r := range s.Rules {
		stored = append(stored, storedRule(r))
	}
	return json.Marshal(stored)
}

func decodeSet(raw []byte) (rule.Set, error) {
	var stored []storedRule
	if err := json.Unmarshal(raw, &stored); err != nil {
		return rule.Set{}, fmt.Errorf("error decoding rule set: %w", err)
	}
	s := rule.Set{Rules: make([]rule.Rule, 0, len(stored))}
	for _, r := range stored {
		s.Rules = append(s.Rules, rule.Rule(r))
	}
	return s, nil
}

func (r *PostgresRuleRepository) get(ctx context.Context, key string) (rule.Set, error) {
	query := `SELECT rules FROM rule_sets WHERE card_id = $1`
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return rule.Set{}, rule.ErrNoOverride
		}
		return rule.Set{}, fmt.Errorf("error getting rule set %s: %w", key, err)
	}
	return decodeSet(raw)
}

func (r *PostgresRuleRepository) save(ctx context.Context, key string, s rule.Set) error {
	raw, err := encodeSet(s)
	if err != nil {
		return fmt.Errorf("error encoding rule set: %w", err)
	}
	query := `INSERT INTO rule_sets (card_id, rules) VALUES ($1, $2)
               ON CONFLICT (card_id) DO UPDATE SET rules = EXCLUDED.rules, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, key, raw); err != nil {
		return fmt.Errorf("error saving rule set %s: %w", key, err)
	}
	return nil
}

// GetDefault returns the global default set, falling back to the built-in
// defaults when nothing has been stored yet.
func (r *PostgresRuleRepository) GetDefault(ctx context.Context) (rule.Set, error) {
	s, err := r.get(ctx, defaultRuleSetKey)
	if err == rule.ErrNoOverride {
		return rule.DefaultSet(), nil
	}
	return s, err
}

func (r *PostgresRuleRepository) SaveDefault(ctx context.Context, s rule.Set) error {
	return r.save(ctx, defaultRuleSetKey, s)
}

func (r *PostgresRuleRepository) GetOverride(ctx context.Context, cardID string) (rule.Set, error) {
	return r.get(ctx, cardID)
}

func (r *PostgresRuleRepository) SaveOverride(ctx context.Context, cardID string, s rule.Set) error {
	return r.save(ctx, cardID, s)
}

func (r *PostgresRuleRepository) DeleteOverride(ctx context.Context, cardID string) error {
	query := `DELETE FROM rule_sets WHERE card_id = $1`
	if _, err := r.db.ExecContext(ctx, query, cardID); err != nil {
		return fmt.Errorf("error deleting rule override for card %s: %w", cardID, err)
	}
	return nil
}
