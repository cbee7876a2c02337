package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Spok95/skedule/internal/config"
	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/httpapi"
	"github.com/Spok95/skedule/internal/jobs"
	"github.com/Spok95/skedule/internal/logging"
	"github.com/Spok95/skedule/internal/observability"
	"github.com/Spok95/skedule/internal/service"
	"github.com/Spok95/skedule/internal/telegraph"
	"github.com/Spok95/skedule/internal/tg"
	"github.com/Spok95/skedule/internal/transmitter"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = serve()
	case "token":
		err = mintToken(args)
	default:
		err = fmt.Errorf("unknown command %q (serve|token)", cmd)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// mintToken печатает сервисный токен: skedule token -access 4 -ttl 720h
func mintToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	access := fs.Int("access", int(httpapi.LevelTelegram), "access level: 5 admin, 4 telegram, 3 parser, 2 website")
	ttl := fs.Duration("ttl", 0, "token lifetime, 0 = no expiry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return errors.New("JWT_SECRET не задан")
	}
	tok, err := httpapi.MintToken([]byte(secret), httpapi.Level(*access), *ttl, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer lg.Closer()
	logger := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flush()

	ctxutil.DefaultDBTimeout = cfg.DBTimeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}

	svc := service.New(database, service.Options{
		Logger:    logger,
		Notifier:  notifier,
		Publisher: telegraph.New(cfg.TelegraphURL, cfg.HTTPClientTimeout),
		Limits: service.Limits{
			MaxChildren: cfg.BasicMaxChildren,
			MaxHistory:  cfg.MaxHistoryResults,
			MaxSearch:   cfg.MaxSearchResults,
		},
	})

	runner := jobs.New(ctx, logger)
	runner.Every(cfg.PremiumSweepInterval, jobs.PremiumExpiryJob, jobs.PremiumExpiry(svc))

	srv := httpapi.NewServer(&httpapi.Options{
		Address:   cfg.HTTPAddr,
		Service:   svc,
		DB:        database,
		JWTSecret: []byte(cfg.JWTSecret),
		Logger:    logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
		stop()
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	runner.Wait()
	logger.Info("stopped")
	return nil
}

func newNotifier(cfg *config.Config, logger *zap.Logger) (service.Notifier, error) {
	switch cfg.Notifier {
	case "telegram":
		n, err := tg.NewNotifier(cfg.BotToken, logger)
		if err != nil {
			return nil, fmt.Errorf("telegram notifier: %w", err)
		}
		return n, nil
	case "log":
		return tg.LogNotifier{Log: logger}, nil
	default:
		return transmitter.New(cfg.TransmitterURL, cfg.HTTPClientTimeout), nil
	}
}
