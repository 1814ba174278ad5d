package card

import (
	"fmt"
	"time"
)

// Card represents one credit card the holder tracks.
type Card struct {
	ID                   string // opaque stable identifier (uuid)
	Name                 string
	Issuer               string
	DueDay               int // 1-31; clamped per month when the month is shorter
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate checks the fields a user can set.
func (c *Card) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("card name must not be empty")
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return fmt.Errorf("due day must be between 1 and 31, got %d", c.DueDay)
	}
	return nil
}
