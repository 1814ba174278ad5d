package app

import (
	"context"
	"testing"
	"time"

	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/domain/card"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerFixture(now time.Time) (*reminderFixture, *LedgerService) {
	f := newReminderFixture(now, &card.Card{ID: "card-1", Name: "Sapphire", DueDay: 15, NotificationsEnabled: true})
	svc := NewLedgerService(f.cards, f.ledger, f.service, f.clock, testLogger())
	return f, svc
}

func TestMarkPaidRecordsOnTimePayment(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	_, svc := newLedgerFixture(now)

	record, err := svc.MarkPaid(context.Background(), "card-1", "2025-03")
	require.NoError(t, err)

	assert.True(t, record.OnTime)
	assert.Equal(t, now, record.MarkedAt)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), record.DueDateAtMarking)
}

func TestMarkPaidAfterDueDateIsLate(t *testing.T) {
	now := time.Date(2025, time.March, 20, 8, 0, 0, 0, time.UTC)
	_, svc := newLedgerFixture(now)

	record, err := svc.MarkPaid(context.Background(), "card-1", "2025-03")
	require.NoError(t, err)
	assert.False(t, record.OnTime)
}

func TestMarkPaidOnDueDayIsOnTime(t *testing.T) {
	now := time.Date(2025, time.March, 15, 23, 0, 0, 0, time.UTC)
	_, svc := newLedgerFixture(now)

	record, err := svc.MarkPaid(context.Background(), "card-1", "2025-03")
	require.NoError(t, err)
	assert.True(t, record.OnTime)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	f, svc := newLedgerFixture(now)
	ctx := context.Background()

	first, err := svc.MarkPaid(ctx, "card-1", "2025-03")
	require.NoError(t, err)

	// The second mark is a no-op and must not recompute OnTime against a
	// different clock.
	f.clock.now = time.Date(2025, time.March, 25, 8, 0, 0, 0, time.UTC)
	second, err := svc.MarkPaid(ctx, "card-1", "2025-03")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.OnTime)
	assert.Len(t, f.ledger.records, 1)
}

func TestUnmarkPaidRemovesRecordAndIsIdempotent(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	f, svc := newLedgerFixture(now)
	ctx := context.Background()

	_, err := svc.MarkPaid(ctx, "card-1", "2025-03")
	require.NoError(t, err)
	require.Len(t, f.ledger.records, 1)

	require.NoError(t, svc.UnmarkPaid(ctx, "card-1", "2025-03"))
	assert.Empty(t, f.ledger.records)

	// Unmarking an unpaid month is a no-op, not an error.
	require.NoError(t, svc.UnmarkPaid(ctx, "card-1", "2025-03"))
}

func TestMarkUnmarkSequencesNeverDuplicate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	f, svc := newLedgerFixture(now)
	ctx := context.Background()

	steps := []struct {
		action string
		month  string
	}{
		{"mark", "2025-03"}, {"mark", "2025-03"}, {"unmark", "2025-03"},
		{"mark", "2025-03"}, {"mark", "2025-04"}, {"mark", "2025-04"},
		{"unmark", "2025-05"},
	}
	for _, s := range steps {
		var err error
		if s.action == "mark" {
			_, err = svc.MarkPaid(ctx, "card-1", billing.MonthKey(s.month))
		} else {
			err = svc.UnmarkPaid(ctx, "card-1", billing.MonthKey(s.month))
		}
		require.NoError(t, err)
	}

	// At most one record per (card, month) regardless of the sequence.
	assert.Len(t, f.ledger.records, 2)
}

func TestMarkPaidReschedulesCard(t *testing.T) {
	now := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	f, svc := newLedgerFixture(now)
	ctx := context.Background()

	require.NoError(t, f.service.Reschedule(ctx, "card-1"))
	before := f.gateway.identifierSet()
	require.NotEmpty(t, before)

	_, err := svc.MarkPaid(ctx, "card-1", "2025-03")
	require.NoError(t, err)

	// With March paid, the authoritative cycle is April and the entries now
	// point at April's due date.
	require.NotEmpty(t, f.gateway.identifierSet())
	for _, entry := range f.gateway.entries {
		assert.Equal(t, time.April, entry.FireAt.Month())
	}
}
