// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"

	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/domain/card"
	"card_reminder_bot/internal/domain/ledger"
	"card_reminder_bot/internal/domain/notify"
	"card_reminder_bot/internal/domain/rule"

	"github.com/sirupsen/logrus"
)

// ErrNoNotificationPermission signals that the delivery channel is not
// available at all. The scheduler degrades to visual status only; callers
// should surface it once, not per card.
var ErrNoNotificationPermission = fmt.Errorf("notification delivery is not permitted")

// ReminderService owns the cancel-then-reschedule protocol that keeps the
// notification store in sync with the ledger, the rules, and the clock.
type ReminderService struct {
	cardRepo   card.Repository
	ledgerRepo ledger.Repository
	ruleRepo   rule.Repository
	gateway    notify.Gateway
	clock      billing.Clock
	logger     *logrus.Entry
}

func NewReminderService(
	cr card.Repository,
	lr ledger.Repository,
	rr rule.Repository,
	gw notify.Gateway,
	clock billing.Clock,
	logger *logrus.Entry,
) *ReminderService {
	return &ReminderService{
		cardRepo:   cr,
		ledgerRepo: lr,
		ruleRepo:   rr,
		gateway:    gw,
		clock:      clock,
		logger:     logger,
	}
}

// ResolveCycle computes the card's authoritative billing cycle from the
// ledger as it stands right now.
func (s *ReminderService) ResolveCycle(ctx context.Context, c *card.Card) (billing.Cycle, error) {
	records, err := s.ledgerRepo.ListByCard(ctx, c.ID)
	if err != nil {
		return billing.Cycle{}, fmt.Errorf("failed to list payments for card %s: %w", c.ID, err)
	}
	return billing.Resolve(c.DueDay, ledger.PaidMonths(records), s.clock.Now()), nil
}

// Reschedule runs the full cancel-then-schedule pair for one card. Any time
// the card's inputs change (payment marked or unmarked, rules edited,
// notifications toggled) this is the single entry point; identifiers are
// deterministic, so redundant runs are harmless.
func (s *ReminderService) Reschedule(ctx context.Context, cardID string) error {
	c, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to get card %s: %w", cardID, err)
	}
	return s.rescheduleCard(ctx, c)
}

// RescheduleAll re-runs the protocol for every card, sequentially: each
// card's cancel and schedule complete before the next card starts, so
// cancel/create pairs for one card never interleave. Run daily so a new
// billing month repoints every card's entries.
func (s *ReminderService) RescheduleAll(ctx context.Context) error {
	if !s.gateway.HasPermission(ctx) {
		return ErrNoNotificationPermission
	}
	cards, err := s.cardRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cards: %w", err)
	}
	for _, c := range cards {
		if err := s.rescheduleCard(ctx, c); err != nil {
			s.logger.WithError(err).WithField("card_id", c.ID).Error("Failed to reschedule card, continuing with remaining cards")
		}
	}
	return nil
}

func (s *ReminderService) rescheduleCard(ctx context.Context, c *card.Card) error {
	logCtx := s.logger.WithField("card_id", c.ID).WithField("card_name", c.Name)

	if !s.gateway.HasPermission(ctx) {
		return ErrNoNotificationPermission
	}

	// The cancel must complete before any new registration so a failure
	// mid-batch can never leave stale entries alongside fresh ones.
	if err := s.gateway.CancelAllForCard(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to cancel notifications for card %s: %w", c.ID, err)
	}

	if !c.NotificationsEnabled {
		logCtx.Info("Notifications disabled for card, cancelled without rescheduling")
		return nil
	}

	cycle, err := s.ResolveCycle(ctx, c)
	if err != nil {
		return err
	}

	rules, err := rule.EffectiveSet(ctx, s.ruleRepo, c.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve rules for card %s: %w", c.ID, err)
	}

	entries := Plan(c, cycle, rules, s.clock.Now())
	registered := 0
	for _, entry := range entries {
		// An individual registration failure must not block the remaining
		// entries for this card.
		if err := s.gateway.ScheduleAt(ctx, entry); err != nil {
			logCtx.WithError(err).WithField("identifier", entry.Identifier).Error("Failed to register notification")
			continue
		}
		registered++
	}

	logCtx.WithFields(logrus.Fields{
		"cycle_month": cycle.MonthKey(),
		"cycle_paid":  cycle.IsPaid,
		"planned":     len(entries),
		"registered":  registered,
	}).Info("Card notifications rescheduled")
	return nil
}
