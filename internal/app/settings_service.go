// internal/app/settings_service.go
package app

import (
	"context"
	"fmt"

	"card_reminder_bot/internal/domain/card"
	"card_reminder_bot/internal/domain/settings"

	"github.com/sirupsen/logrus"
)

// SettingsService owns the notification toggles. The global switch and the
// per-card flags are related but independently stored: a global action writes
// both, a per-card action writes only the card.
type SettingsService struct {
	cardRepo     card.Repository
	settingsRepo settings.Repository
	reminders    *ReminderService
	logger       *logrus.Entry
}

func NewSettingsService(
	cr card.Repository,
	sr settings.Repository,
	reminders *ReminderService,
	logger *logrus.Entry,
) *SettingsService {
	return &SettingsService{
		cardRepo:     cr,
		settingsRepo: sr,
		reminders:    reminders,
		logger:       logger,
	}
}

// SetAllNotifications flips every card's individual flag to match and
// persists the global switch's own value. The stored global value reflects
// only this last explicit global action.
func (s *SettingsService) SetAllNotifications(ctx context.Context, enabled bool) error {
	if err := s.cardRepo.SetAllNotificationsEnabled(ctx, enabled); err != nil {
		return fmt.Errorf("failed to set all card notification flags: %w", err)
	}
	if err := s.settingsRepo.SetGlobalNotificationsEnabled(ctx, enabled); err != nil {
		return fmt.Errorf("failed to persist global notification switch: %w", err)
	}
	s.logger.WithField("enabled", enabled).Info("Global notification switch applied to all cards")

	if err := s.reminders.RescheduleAll(ctx); err != nil && err != ErrNoNotificationPermission {
		return err
	}
	return nil
}

// SetCardNotifications flips one card's flag. The persisted global switch is
// deliberately left untouched; it is not a derived aggregate of card states.
func (s *SettingsService) SetCardNotifications(ctx context.Context, cardID string, enabled bool) error {
	if err := s.cardRepo.SetNotificationsEnabled(ctx, cardID, enabled); err != nil {
		return fmt.Errorf("failed to set notification flag for card %s: %w", cardID, err)
	}
	s.logger.WithFields(logrus.Fields{"card_id": cardID, "enabled": enabled}).Info("Card notification flag updated")

	if err := s.reminders.Reschedule(ctx, cardID); err != nil && err != ErrNoNotificationPermission {
		return err
	}
	return nil
}

// GlobalNotificationsEnabled returns the stored global switch value.
func (s *SettingsService) GlobalNotificationsEnabled(ctx context.Context) (bool, error) {
	return s.settingsRepo.GlobalNotificationsEnabled(ctx)
}
