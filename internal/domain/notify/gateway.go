package notify

import (
	"context"
	"time"
)

// Content is the user-visible part of a reminder.
type Content struct {
	Title string
	Body  string
}

// Scheduled is one timed reminder entry. Identifier is a pure function of
// (card, rule, offset, time-of-day), so re-deriving it always yields the same
// key and cancel/reschedule cycles can never duplicate or orphan entries.
type Scheduled struct {
	Identifier string
	CardID     string
	FireAt     time.Time
	Content    Content
}

// Gateway abstracts the timed-notification store the scheduler registers
// entries with. Delivery timing is owned by whatever sits behind it; the
// scheduler only registers and cancels.
type Gateway interface {
	// ScheduleAt registers an entry, replacing any entry with the same
	// identifier.
	ScheduleAt(ctx context.Context, s Scheduled) error
	Cancel(ctx context.Context, identifier string) error
	// CancelAllForCard removes every entry the scheduler could have produced
	// for the card, pending or not.
	CancelAllForCard(ctx context.Context, cardID string) error
	// HasPermission reports whether reminders can be delivered at all.
	HasPermission(ctx context.Context) bool
}
