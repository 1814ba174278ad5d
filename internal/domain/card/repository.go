package card

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Card entities.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	GetByID(ctx context.Context, id string) (*Card, error)
	GetByName(ctx context.Context, name string) (*Card, error)
	Update(ctx context.Context, c *Card) error // Name, Issuer, DueDay, NotificationsEnabled
	List(ctx context.Context) ([]*Card, error)
	SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error
	// SetAllNotificationsEnabled flips every card's individual flag at once.
	SetAllNotificationsEnabled(ctx context.Context, enabled bool) error
}
