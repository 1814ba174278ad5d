// internal/app/card_service.go
package app

import (
	"context"
	"fmt"

	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/domain/card"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CardService manages the card list and projects resolved cycles into the
// "what's due next" board.
type CardService struct {
	cardRepo  card.Repository
	reminders *ReminderService
	clock     billing.Clock
	logger    *logrus.Entry
}

func NewCardService(
	cr card.Repository,
	reminders *ReminderService,
	clock billing.Clock,
	logger *logrus.Entry,
) *CardService {
	return &CardService{
		cardRepo:  cr,
		reminders: reminders,
		clock:     clock,
		logger:    logger,
	}
}

// AddCard creates a card with a fresh opaque ID. New cards have
// notifications enabled.
func (s *CardService) AddCard(ctx context.Context, name, issuer string, dueDay int) (*card.Card, error) {
	c := &card.Card{
		ID:                   uuid.NewString(),
		Name:                 name,
		Issuer:               issuer,
		DueDay:               dueDay,
		NotificationsEnabled: true,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.cardRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"card_id": c.ID, "name": c.Name, "due_day": c.DueDay}).Info("Card added")

	if err := s.reminders.Reschedule(ctx, c.ID); err != nil && err != ErrNoNotificationPermission {
		s.logger.WithError(err).WithField("card_id", c.ID).Error("Failed to schedule reminders for new card")
	}
	return c, nil
}

// SetDueDay changes a card's fixed monthly due day and repoints its reminders.
func (s *CardService) SetDueDay(ctx context.Context, cardID string, dueDay int) (*card.Card, error) {
	c, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", cardID, err)
	}
	c.DueDay = dueDay
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.cardRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update card %s: %w", cardID, err)
	}
	s.logger.WithFields(logrus.Fields{"card_id": cardID, "due_day": dueDay}).Info("Card due day updated")

	if err := s.reminders.Reschedule(ctx, cardID); err != nil && err != ErrNoNotificationPermission {
		s.logger.WithError(err).WithField("card_id", cardID).Error("Failed to reschedule after due day change")
	}
	return c, nil
}

// GetByName looks a card up by its display name.
func (s *CardService) GetByName(ctx context.Context, name string) (*card.Card, error) {
	return s.cardRepo.GetByName(ctx, name)
}

// List returns all cards.
func (s *CardService) List(ctx context.Context) ([]*card.Card, error) {
	return s.cardRepo.List(ctx)
}

// Board resolves every card and aggregates the results into the due-next
// view. The shown month is the month containing now: the board is a "this
// month" surface, so day counts render only for due dates inside it.
func (s *CardService) Board(ctx context.Context) (billing.Board, error) {
	cards, err := s.cardRepo.List(ctx)
	if err != nil {
		return billing.Board{}, fmt.Errorf("failed to list cards: %w", err)
	}

	shownMonth := billing.MonthKeyOf(s.clock.Now())
	entries := make([]billing.BoardEntry, 0, len(cards))
	for _, c := range cards {
		cycle, err := s.reminders.ResolveCycle(ctx, c)
		if err != nil {
			s.logger.WithError(err).WithField("card_id", c.ID).Error("Failed to resolve cycle for board, skipping card")
			continue
		}
		entries = append(entries, billing.BoardEntry{
			CardID:   c.ID,
			CardName: c.Name,
			Cycle:    cycle,
			Status:   billing.Project(cycle, c.NotificationsEnabled, shownMonth),
		})
	}
	return billing.BuildBoard(entries), nil
}
