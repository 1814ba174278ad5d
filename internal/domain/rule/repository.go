package rule

import (
	"context"
	"fmt"
)

// ErrNoOverride is returned by GetOverride when the card has no explicit
// rule set and follows the global default.
var ErrNoOverride = fmt.Errorf("card has no rule override")

// Repository stores the global default rule set and per-card overrides.
// Inheritance is one-directional: a card without an override follows the
// default transparently, and editing the default never touches a card that
// has written its own override.
type Repository interface {
	GetDefault(ctx context.Context) (Set, error)
	SaveDefault(ctx context.Context, s Set) error
	// GetOverride returns the card's explicit rule set, or ErrNoOverride when
	// the card follows the default.
	GetOverride(ctx context.Context, cardID string) (Set, error)
	SaveOverride(ctx context.Context, cardID string, s Set) error
	DeleteOverride(ctx context.Context, cardID string) error
}

// EffectiveSet resolves a card's rules: explicit override first, global
// default otherwise.
func EffectiveSet(ctx context.Context, repo Repository, cardID string) (Set, error) {
	s, err := repo.GetOverride(ctx, cardID)
	if err == nil {
		return s, nil
	}
	if err != ErrNoOverride {
		return Set{}, err
	}
	return repo.GetDefault(ctx)
}
