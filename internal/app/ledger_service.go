// internal/app/ledger_service.go
package app

import (
	"context"
	"fmt"

	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/domain/card"
	"card_reminder_bot/internal/domain/ledger"
	idb "card_reminder_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// LedgerService owns the two user actions that mutate payment history:
// marking a billing month paid and undoing that mark. Both are idempotent and
// both finish by rescheduling the card's reminders.
type LedgerService struct {
	cardRepo   card.Repository
	ledgerRepo ledger.Repository
	reminders  *ReminderService
	clock      billing.Clock
	logger     *logrus.Entry
}

func NewLedgerService(
	cr card.Repository,
	lr ledger.Repository,
	reminders *ReminderService,
	clock billing.Clock,
	logger *logrus.Entry,
) *LedgerService {
	return &LedgerService{
		cardRepo:   cr,
		ledgerRepo: lr,
		reminders:  reminders,
		clock:      clock,
		logger:     logger,
	}
}

// MarkPaid records a payment for the card and billing month. Marking an
// already-paid month is a no-op. OnTime and the due date are captured once,
// at marking time, against the due day as configured right now.
func (s *LedgerService) MarkPaid(ctx context.Context, cardID string, month billing.MonthKey) (*ledger.PaymentRecord, error) {
	c, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", cardID, err)
	}

	existing, err := s.ledgerRepo.Get(ctx, cardID, month)
	if err == nil {
		s.logger.WithFields(logrus.Fields{"card_id": cardID, "billing_month": month}).Info("Month already marked paid, no-op")
		return existing, nil
	}
	if err != idb.ErrPaymentNotFound {
		return nil, fmt.Errorf("failed to check existing payment for card %s month %s: %w", cardID, month, err)
	}

	now := s.clock.Now()
	year, monthOfYear := month.Date()
	dueAtMarking := billing.DueDate(year, monthOfYear, c.DueDay, now.Location())

	record := &ledger.PaymentRecord{
		CardID:           cardID,
		BillingMonth:     month,
		MarkedAt:         now,
		DueDateAtMarking: dueAtMarking,
		OnTime:           billing.DaysBetween(now, dueAtMarking) >= 0,
	}
	if err := s.ledgerRepo.Create(ctx, record); err != nil {
		if err == idb.ErrDuplicatePayment {
			// Lost a race with a concurrent mark; same outcome as the no-op path.
			s.logger.WithFields(logrus.Fields{"card_id": cardID, "billing_month": month}).Info("Payment already recorded, no-op")
			return s.ledgerRepo.Get(ctx, cardID, month)
		}
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"card_id":       cardID,
		"billing_month": month,
		"on_time":       record.OnTime,
	}).Info("Payment marked")

	if err := s.reminders.Reschedule(ctx, cardID); err != nil && err != ErrNoNotificationPermission {
		s.logger.WithError(err).WithField("card_id", cardID).Error("Failed to reschedule after marking paid")
	}
	return record, nil
}

// UnmarkPaid removes the payment record for the month. Unmarking a month
// that was never marked is a no-op.
func (s *LedgerService) UnmarkPaid(ctx context.Context, cardID string, month billing.MonthKey) error {
	if _, err := s.cardRepo.GetByID(ctx, cardID); err != nil {
		return fmt.Errorf("failed to get card %s: %w", cardID, err)
	}

	if err := s.ledgerRepo.Delete(ctx, cardID, month); err != nil {
		return fmt.Errorf("failed to delete payment record for card %s month %s: %w", cardID, month, err)
	}
	s.logger.WithFields(logrus.Fields{"card_id": cardID, "billing_month": month}).Info("Payment unmarked")

	if err := s.reminders.Reschedule(ctx, cardID); err != nil && err != ErrNoNotificationPermission {
		s.logger.WithError(err).WithField("card_id", cardID).Error("Failed to reschedule after unmarking")
	}
	return nil
}
