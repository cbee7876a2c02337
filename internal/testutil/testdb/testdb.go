//go:build testutil
// +build testutil

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/skedule/internal/db"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type DBHandle struct {
	DB     *sql.DB
	cancel func()
	stop   func(context.Context) error
}

func (h *DBHandle) Close() {
	if h.DB != nil {
		_ = h.DB.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
	if h.cancel != nil {
		h.cancel()
	}
}

// Start поднимает postgres в контейнере и накатывает встроенные миграции.
func Start(ctx context.Context) (*DBHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:17-alpine"),
		postgres.WithDatabase("skedule"),
		postgres.WithUsername("skedule"),
		postgres.WithPassword("skedule"),
	)
	if err != nil {
		cancel()
		return nil, err
	}
	fail := func(err error) (*DBHandle, error) {
		_ = pg.Terminate(context.Background())
		cancel()
		return nil, err
	}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fail(err)
	}
	database, err := waitReady(ctx, uri)
	if err != nil {
		return fail(err)
	}
	if err := db.Migrate(database); err != nil {
		_ = database.Close()
		return fail(fmt.Errorf("migrate: %w", err))
	}

	return &DBHandle{
		DB:     database,
		cancel: cancel,
		stop:   pg.Terminate,
	}, nil
}

// waitReady: контейнер отвечает на порт раньше, чем postgres принимает запросы.
func waitReady(ctx context.Context, uri string) (*sql.DB, error) {
	dead := time.Now().Add(20 * time.Second)
	var last error
	for time.Now().Before(dead) {
		database, err := db.Open(ctx, uri)
		if err == nil {
			return database, nil
		}
		last = err
		time.Sleep(200 * time.Millisecond)
	}
	return nil, errors.Join(errors.New("db not ready"), last)
}
