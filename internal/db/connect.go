package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Spok95/skedule/internal/metrics"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open открывает пул через pgx stdlib и проверяет соединение.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	database, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	database.SetMaxOpenConns(20)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(30 * time.Minute)

	if err := Ping(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

// Ping пингует БД и пишет латентность в метрики.
func Ping(ctx context.Context, database *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	t0 := time.Now()
	if err := database.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	metrics.ObserveDBPing(time.Since(t0))
	return nil
}
