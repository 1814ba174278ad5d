package app

import (
	"context"
	"testing"
	"time"

	"card_reminder_bot/internal/domain/card"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsFixture(now time.Time) (*reminderFixture, *fakeSettingsRepo, *SettingsService) {
	f := newReminderFixture(now,
		&card.Card{ID: "card-a", Name: "Amber", DueDay: 12, NotificationsEnabled: true},
		&card.Card{ID: "card-b", Name: "Basalt", DueDay: 20, NotificationsEnabled: true},
	)
	settingsRepo := &fakeSettingsRepo{}
	svc := NewSettingsService(f.cards, settingsRepo, f.service, testLogger())
	return f, settingsRepo, svc
}

func TestSetAllNotificationsWritesEveryCardAndTheGlobalSwitch(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	f, settingsRepo, svc := newSettingsFixture(now)
	ctx := context.Background()

	require.NoError(t, svc.SetAllNotifications(ctx, false))

	for _, c := range f.cards.cards {
		assert.False(t, c.NotificationsEnabled)
	}
	global, err := settingsRepo.GlobalNotificationsEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, global)
}

func TestCardToggleDoesNotChangeStoredGlobalSwitch(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	f, settingsRepo, svc := newSettingsFixture(now)
	ctx := context.Background()

	require.NoError(t, svc.SetAllNotifications(ctx, true))

	// Flipping one card afterwards must not touch the persisted global
	// value: it reflects the last explicit global action only, not a
	// derived aggregate of card states.
	require.NoError(t, svc.SetCardNotifications(ctx, "card-a", false))

	global, err := settingsRepo.GlobalNotificationsEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, global)

	cardA, err := f.cards.GetByID(ctx, "card-a")
	require.NoError(t, err)
	assert.False(t, cardA.NotificationsEnabled)
	cardB, err := f.cards.GetByID(ctx, "card-b")
	require.NoError(t, err)
	assert.True(t, cardB.NotificationsEnabled)
}

func TestGlobalToggleOverridesPriorIndividualStates(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	f, settingsRepo, svc := newSettingsFixture(now)
	ctx := context.Background()

	require.NoError(t, svc.SetCardNotifications(ctx, "card-a", false))
	require.NoError(t, svc.SetAllNotifications(ctx, true))

	// The global action applies uniformly, overwriting the individual state.
	cardA, err := f.cards.GetByID(ctx, "card-a")
	require.NoError(t, err)
	assert.True(t, cardA.NotificationsEnabled)

	global, err := settingsRepo.GlobalNotificationsEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, global)
}

func TestDisablingCardCancelsItsNotifications(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	f, _, svc := newSettingsFixture(now)
	ctx := context.Background()

	require.NoError(t, f.service.RescheduleAll(ctx))
	require.NotEmpty(t, f.gateway.identifierSet())

	require.NoError(t, svc.SetCardNotifications(ctx, "card-a", false))

	for _, entry := range f.gateway.entries {
		assert.NotEqual(t, "card-a", entry.CardID, "card-a entry survived the suppression: %s", entry.Identifier)
	}
}
