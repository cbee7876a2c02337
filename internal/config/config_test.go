package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8009" || cfg.Notifier != "transmitter" {
		t.Fatalf("неожиданные значения по умолчанию: %+v", cfg)
	}
	if cfg.BasicMaxChildren != 1 || cfg.MaxHistoryResults != 10 || cfg.MaxSearchResults != 5 {
		t.Fatalf("лимиты по умолчанию: %+v", cfg)
	}
	if cfg.PremiumSweepInterval != time.Hour {
		t.Fatalf("интервал: %v", cfg.PremiumSweepInterval)
	}
}

func TestLoad_TelegramNeedsToken(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("NOTIFIER", "telegram")
	t.Setenv("BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("ожидали ошибку без BOT_TOKEN")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_TIMEOUT", "пять")

	if _, err := Load(); err == nil {
		t.Fatal("ожидали ошибку парсинга DB_TIMEOUT")
	}
}

func TestMustEnv_Panics(t *testing.T) {
	t.Setenv("SKEDULE_EMPTY", "")
	defer func() {
		if recover() == nil {
			t.Fatal("ожидали panic")
		}
	}()
	_ = mustEnv("SKEDULE_EMPTY")
}
