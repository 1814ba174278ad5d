package scheduler

import (
	"context"
	"time"

	"card_reminder_bot/internal/app"
	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/domain/notify"
	domainTelegram "card_reminder_bot/internal/domain/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// NotificationQueue is the store side the dispatcher reads from. Implemented
// by the Postgres notification store.
type NotificationQueue interface {
	ListDue(ctx context.Context, now time.Time) ([]*notify.Scheduled, error)
	MarkSent(ctx context.Context, identifier string, at time.Time) error
}

// ReminderScheduler runs the two cron jobs the system needs: delivering due
// notification entries, and the daily full reschedule that repoints every
// card's entries after a billing month rolls over.
type ReminderScheduler struct {
	cronEngine       *cron.Cron
	reminders        *app.ReminderService
	queue            NotificationQueue
	telegramClient   domainTelegram.Client
	cardholderChatID int64
	clock            billing.Clock
	logger           *logrus.Entry
	cronSpecDispatch string
	cronSpecDaily    string
}

func NewReminderScheduler(
	reminders *app.ReminderService,
	queue NotificationQueue,
	telegramClient domainTelegram.Client,
	cardholderChatID int64,
	clock billing.Clock,
	logger *logrus.Entry,
	cronSpecDispatch string, // e.g. "* * * * *" (every minute)
	cronSpecDaily string, // e.g. "5 0 * * *" (00:05 daily)
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		reminders:        reminders,
		queue:            queue,
		telegramClient:   telegramClient,
		cardholderChatID: cardholderChatID,
		clock:            clock,
		logger:           logger,
		cronSpecDispatch: cronSpecDispatch,
		cronSpecDaily:    cronSpecDaily,
	}
}

func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler")

	if _, err := s.cronEngine.AddFunc(s.cronSpecDispatch, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		s.DispatchDue(ctx)
	}); err != nil {
		return err
	}

	if _, err := s.cronEngine.AddFunc(s.cronSpecDaily, func() {
		s.logger.Info("Daily reschedule triggered")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.reminders.RescheduleAll(ctx); err != nil {
			if err == app.ErrNoNotificationPermission {
				s.logger.Warn("Notification delivery unavailable, daily reschedule skipped")
				return
			}
			s.logger.WithError(err).Error("Daily reschedule failed")
		}
	}); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started with jobs")
	return nil
}

// DispatchDue delivers every entry whose fire time has passed. A delivery
// failure leaves the entry unsent so the next run retries it; a mark-sent
// failure is logged but does not re-deliver within this run.
func (s *ReminderScheduler) DispatchDue(ctx context.Context) {
	now := s.clock.Now()
	due, err := s.queue.ListDue(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list due notifications")
		return
	}
	if len(due) == 0 {
		return
	}
	s.logger.WithField("count", len(due)).Info("Dispatching due notifications")

	for _, entry := range due {
		text := entry.Content.Title + "\n" + entry.Content.Body
		if err := s.telegramClient.SendMessage(s.cardholderChatID, text, nil); err != nil {
			s.logger.WithError(err).WithField("identifier", entry.Identifier).Error("Failed to deliver notification, will retry next run")
			continue
		}
		if err := s.queue.MarkSent(ctx, entry.Identifier, now); err != nil {
			s.logger.WithError(err).WithField("identifier", entry.Identifier).Error("Failed to mark notification sent")
		}
	}
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Reminder scheduler gracefully stopped")
}
