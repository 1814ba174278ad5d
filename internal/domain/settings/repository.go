package settings

import "context"

// Repository stores app-wide settings. The global notifications switch has
// its own row and its own write path: it records the last explicit global
// action only and is never recomputed from per-card flags.
type Repository interface {
	GlobalNotificationsEnabled(ctx context.Context) (bool, error)
	SetGlobalNotificationsEnabled(ctx context.Context, enabled bool) error
}
