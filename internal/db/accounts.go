package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
)

const accountCols = `id, telegram_id, premium_status, last_payment_at, subscription_until`

func CreateAccount(ctx context.Context, q Querier, telegramID int64) (models.Account, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	a := models.Account{TelegramID: telegramID}
	err := q.QueryRowContext(ctx, `INSERT INTO accounts (telegram_id) VALUES ($1) RETURNING id`, telegramID).Scan(&a.ID)
	return a, err
}

// GetAccountByTelegramID возвращает nil, nil если аккаунта нет.
func GetAccountByTelegramID(ctx context.Context, q Querier, telegramID int64) (*models.Account, error) {
	return scanAccount(ctx, q, `SELECT `+accountCols+` FROM accounts WHERE telegram_id = $1`, telegramID)
}

// LockAccount то же, что GetAccountByTelegramID, но с блокировкой строки до конца транзакции.
func LockAccount(ctx context.Context, q Querier, telegramID int64) (*models.Account, error) {
	return scanAccount(ctx, q, `SELECT `+accountCols+` FROM accounts WHERE telegram_id = $1 FOR UPDATE`, telegramID)
}

func scanAccount(ctx context.Context, q Querier, query string, args ...any) (*models.Account, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var a models.Account
	var paid, until sql.NullTime
	err := q.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.TelegramID, &a.PremiumStatus, &paid, &until)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if paid.Valid {
		a.LastPaymentAt = &paid.Time
	}
	if until.Valid {
		a.SubscriptionUntil = &until.Time
	}
	return &a, nil
}

// SetPremium выставляет премиум-статус; false: аккаунта нет.
func SetPremium(ctx context.Context, q Querier, telegramID int64, status int, paidAt, until *time.Time) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `
		UPDATE accounts
		SET premium_status = $2,
		    last_payment_at = COALESCE($3, last_payment_at),
		    subscription_until = $4
		WHERE telegram_id = $1
	`, telegramID, status, paidAt, until)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ExpirePremium сбрасывает премиум у аккаунтов с истёкшей подпиской.
func ExpirePremium(ctx context.Context, q Querier, now time.Time) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `
		UPDATE accounts SET premium_status = 0
		WHERE premium_status > 0 AND subscription_until IS NOT NULL AND subscription_until < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func ListTelegramIDs(ctx context.Context, q Querier) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `SELECT telegram_id FROM accounts ORDER BY telegram_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
