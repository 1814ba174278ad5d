package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken        string
	DatabaseURL          string
	CardholderTelegramID int64 // single-user bot: the chat all reminders go to
	LogLevel             string
	Environment          string
	CronSpecDispatch     string // how often due notifications are delivered
	CronSpecDailyResched string // daily full reschedule, covers month rollover
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	holderIDStr := os.Getenv("CARDHOLDER_TELEGRAM_ID")
	if holderIDStr == "" {
		return nil, fmt.Errorf("CARDHOLDER_TELEGRAM_ID is not set")
	}
	cfg.CardholderTelegramID, err = strconv.ParseInt(holderIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CARDHOLDER_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecDispatch = os.Getenv("CRON_SPEC_DISPATCH")
	if cfg.CronSpecDispatch == "" {
		cfg.CronSpecDispatch = "* * * * *" // Default: every minute
	}

	cfg.CronSpecDailyResched = os.Getenv("CRON_SPEC_DAILY_RESCHEDULE")
	if cfg.CronSpecDailyResched == "" {
		cfg.CronSpecDailyResched = "5 0 * * *" // Default: 00:05 daily, just after midnight rollover
	}

	return cfg, nil
}
