package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string
	JWTSecret   string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	Release     string

	// Notifier выбирает доставку объявлений: transmitter|telegram|log
	Notifier       string
	TransmitterURL string
	BotToken       string
	TelegraphURL   string

	HTTPClientTimeout    time.Duration
	DBTimeout            time.Duration
	PremiumSweepInterval time.Duration

	BasicMaxChildren  int
	MaxHistoryResults int
	MaxSearchResults  int
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    mustEnv("DATABASE_URL"),
		JWTSecret:      mustEnv("JWT_SECRET"),
		HTTPAddr:       getenv("HTTP_ADDR", ":8009"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Env:            getenv("ENV", "dev"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		Release:        getenv("RELEASE", "dev"),
		Notifier:       strings.ToLower(getenv("NOTIFIER", "transmitter")),
		TransmitterURL: getenv("TRANSMITTER_URL", "http://transmitter:8998"),
		BotToken:       os.Getenv("BOT_TOKEN"),
		TelegraphURL:   getenv("TELEGRAPH_URL", "https://api.telegra.ph"),
	}

	var err error
	if cfg.HTTPClientTimeout, err = getDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBTimeout, err = getDuration("DB_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.PremiumSweepInterval, err = getDuration("PREMIUM_SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.BasicMaxChildren, err = getInt("BASIC_MAX_CHILDREN", 1); err != nil {
		return nil, err
	}
	if cfg.MaxHistoryResults, err = getInt("MAX_HISTORY_RESULTS", 10); err != nil {
		return nil, err
	}
	if cfg.MaxSearchResults, err = getInt("MAX_SEARCH_RESULTS", 5); err != nil {
		return nil, err
	}

	switch cfg.Notifier {
	case "transmitter", "log":
	case "telegram":
		if cfg.BotToken == "" {
			return nil, fmt.Errorf("NOTIFIER=telegram: BOT_TOKEN is empty")
		}
	default:
		return nil, fmt.Errorf("NOTIFIER: unknown value %q", cfg.Notifier)
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func getInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: bad int %q: %w", k, v, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must be >= 0, got %d", k, n)
	}
	return n, nil
}
