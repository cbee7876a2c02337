package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
)

const corpusCols = `id, school_id, name, address, canteen_text`

func CreateCorpus(ctx context.Context, q Querier, c models.Corpus) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO corpuses (school_id, name, address, canteen_text)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.SchoolID, c.Name, c.Address, c.CanteenText).Scan(&id)
	return id, err
}

func UpdateCorpus(ctx context.Context, q Querier, c models.Corpus) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		UPDATE corpuses SET name = $2, address = $3, canteen_text = $4
		WHERE id = $1
	`, c.ID, c.Name, c.Address, c.CanteenText)
	return err
}

func GetCorpus(ctx context.Context, q Querier, id int64) (*models.Corpus, error) {
	return scanCorpus(ctx, q, `SELECT `+corpusCols+` FROM corpuses WHERE id = $1`, id)
}

func CorpusByName(ctx context.Context, q Querier, schoolID int64, name string) (*models.Corpus, error) {
	return scanCorpus(ctx, q, `SELECT `+corpusCols+` FROM corpuses WHERE school_id = $1 AND name = $2`, schoolID, name)
}

func CorpusByAddress(ctx context.Context, q Querier, schoolID int64, address string) (*models.Corpus, error) {
	return scanCorpus(ctx, q, `SELECT `+corpusCols+` FROM corpuses WHERE school_id = $1 AND address = $2`, schoolID, address)
}

func scanCorpus(ctx context.Context, q Querier, query string, args ...any) (*models.Corpus, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var c models.Corpus
	var canteen sql.NullString
	err := q.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.SchoolID, &c.Name, &c.Address, &canteen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if canteen.Valid {
		c.CanteenText = &canteen.String
	}
	return &c, nil
}

func ListCorpuses(ctx context.Context, q Querier, schoolID int64) ([]models.Corpus, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `SELECT `+corpusCols+` FROM corpuses WHERE school_id = $1 ORDER BY id`, schoolID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Corpus
	for rows.Next() {
		var c models.Corpus
		var canteen sql.NullString
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.Name, &c.Address, &canteen); err != nil {
			return nil, err
		}
		if canteen.Valid {
			c.CanteenText = &canteen.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
