package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the feed boundary. The provider publishes the current month's
// menus as a JSON array per city and meal slot.
const (
	defaultFeedBaseURL = "https://kykyemekliste.com/api/menu/liste"
	defaultFeedCityID  = 1
	defaultFeedTimeout = 15 * time.Second

	// Provider boilerplate occasionally injected in place of dishes. Matched
	// case-insensitively; override via FEED_NOISE_PHRASES when the wording
	// drifts.
	defaultNoisePhrases = "gönderip,katkı sağla,uygulamaya,listesini,daha hızlı,girilmesine"

	defaultSendInterval = 50 * time.Millisecond
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken string
	DatabaseURL   string
	AdminChatID   int64 // bootstrap admin, 0 disables
	LogLevel      string
	Environment   string

	FeedBaseURL  string
	FeedCityID   int
	FeedTimeout  time.Duration
	NoisePhrases []string

	CronSpecIngestion string
	CronSpecBreakfast string
	CronSpecDinner    string

	SendInterval time.Duration
	MetricsAddr  string
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

	if adminIDStr := os.Getenv("ADMIN_CHAT_ID"); adminIDStr != "" {
		cfg.AdminChatID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.FeedBaseURL = os.Getenv("FEED_BASE_URL")
	if cfg.FeedBaseURL == "" {
		cfg.FeedBaseURL = defaultFeedBaseURL
	}

	cfg.FeedCityID = defaultFeedCityID
	if cityIDStr := os.Getenv("FEED_CITY_ID"); cityIDStr != "" {
		cfg.FeedCityID, err = strconv.Atoi(cityIDStr)
		if err != nil {
			return nil, fmt.Errorf("invalid FEED_CITY_ID: %w", err)
		}
	}

	cfg.FeedTimeout = defaultFeedTimeout
	if timeoutStr := os.Getenv("FEED_TIMEOUT"); timeoutStr != "" {
		cfg.FeedTimeout, err = time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid FEED_TIMEOUT: %w", err)
		}
	}

	noisePhrases := os.Getenv("FEED_NOISE_PHRASES")
	if noisePhrases == "" {
		noisePhrases = defaultNoisePhrases
	}
	for _, phrase := range strings.Split(noisePhrases, ",") {
		phrase = strings.TrimSpace(phrase)
		if phrase != "" {
			cfg.NoisePhrases = append(cfg.NoisePhrases, phrase)
		}
	}

	cfg.CronSpecIngestion = os.Getenv("CRON_SPEC_INGESTION")
	if cfg.CronSpecIngestion == "" {
		cfg.CronSpecIngestion = "0 6 * * *" // Default: 06:00 daily
	}
	cfg.CronSpecBreakfast = os.Getenv("CRON_SPEC_BREAKFAST")
	if cfg.CronSpecBreakfast == "" {
		cfg.CronSpecBreakfast = "30 6 * * *" // Default: 06:30 daily
	}
	cfg.CronSpecDinner = os.Getenv("CRON_SPEC_DINNER")
	if cfg.CronSpecDinner == "" {
		cfg.CronSpecDinner = "0 14 * * *" // Default: 14:00 daily
	}

	cfg.SendInterval = defaultSendInterval
	if intervalStr := os.Getenv("SEND_INTERVAL"); intervalStr != "" {
		cfg.SendInterval, err = time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SEND_INTERVAL: %w", err)
		}
		if cfg.SendInterval <= 0 {
			return nil, fmt.Errorf("SEND_INTERVAL must be positive")
		}
	}

	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}

	return cfg, nil
}
