package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"card_reminder_bot/internal/app"
	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/infra/config"
	idb "card_reminder_bot/internal/infra/database"
	"card_reminder_bot/internal/infra/logger"
	"card_reminder_bot/internal/infra/scheduler"
	"card_reminder_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Card Reminder Bot starting...")

	mainLogger := log.New(os.Stdout, "MAIN: ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	appLogger := logger.Get().WithField("app", "card_reminder_bot")

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	if err := idb.Migrate(context.Background(), db); err != nil {
		mainLogger.Fatalf("FATAL: Could not run schema migration: %v", err)
	}
	mainLogger.Println("INFO: Database connection established and schema verified.")

	// Initialize Repositories
	cardRepo := idb.NewPostgresCardRepository(db)
	paymentRepo := idb.NewPostgresPaymentRepository(db)
	ruleRepo := idb.NewPostgresRuleRepository(db)
	settingsRepo := idb.NewPostgresSettingsRepository(db)
	notificationStore := idb.NewPostgresNotificationStore(db, func(context.Context) bool {
		// Delivery is possible as long as a cardholder chat is configured.
		return cfg.CardholderTelegramID != 0
	})
	mainLogger.Println("INFO: Repositories initialized.")

	clock := billing.SystemClock{}

	// Initialize Services
	reminderService := app.NewReminderService(cardRepo, paymentRepo, ruleRepo, notificationStore, clock, appLogger.WithField("service", "reminder"))
	ledgerService := app.NewLedgerService(cardRepo, paymentRepo, reminderService, clock, appLogger.WithField("service", "ledger"))
	settingsService := app.NewSettingsService(cardRepo, settingsRepo, reminderService, appLogger.WithField("service", "settings"))
	cardService := app.NewCardService(cardRepo, reminderService, clock, appLogger.WithField("service", "card"))
	mainLogger.Println("INFO: Application services initialized.")

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			log.Printf("ERROR (telebot): %v", err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				log.Printf("ERROR (telebot context): Message: %s, Sender: %d, Chat: %d", c.Text(), c.Sender().ID, c.Chat().ID)
			}
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}
	telegramClient := telegram.NewTelebotAdapter(bot)

	// Initialize ReminderScheduler
	reminderScheduler := scheduler.NewReminderScheduler(
		reminderService,
		notificationStore,
		telegramClient,
		cfg.CardholderTelegramID,
		clock,
		appLogger.WithField("component", "scheduler"),
		cfg.CronSpecDispatch,
		cfg.CronSpecDailyResched,
	)
	if err := reminderScheduler.Start(); err != nil {
		mainLogger.Fatalf("FATAL: Could not start reminder scheduler: %v", err)
	}

	// Register Handlers
	telegram.RegisterCommandHandlers(context.Background(), bot, cfg.CardholderTelegramID, telegram.Services{
		Cards:     cardService,
		Ledger:    ledgerService,
		Settings:  settingsService,
		Reminders: reminderService,
		Rules:     ruleRepo,
	}, appLogger.WithField("component", "telegram"))
	mainLogger.Println("INFO: Command handlers registered.")

	// Bring the notification store in line with the ledger on boot.
	if err := reminderService.RescheduleAll(context.Background()); err != nil {
		if err == app.ErrNoNotificationPermission {
			mainLogger.Println("WARN: Notification delivery unavailable; running with visual status only.")
		} else {
			mainLogger.Printf("ERROR: Initial reschedule failed: %v", err)
		}
	}

	mainLogger.Println("INFO: Application setup complete. Bot and Scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Println("INFO: Shutting down application...")
	reminderScheduler.Stop()
	bot.Stop()
	mainLogger.Println("INFO: Application shut down gracefully.")
}
