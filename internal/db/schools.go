package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
)

func CreateSchool(ctx context.Context, q Querier, name string) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `INSERT INTO schools (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	return id, err
}

func UpdateSchool(ctx context.Context, q Querier, s models.School) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `UPDATE schools SET name = $2 WHERE id = $1`, s.ID, s.Name)
	return err
}

// GetSchool возвращает nil, nil если школы нет.
func GetSchool(ctx context.Context, q Querier, id int64) (*models.School, error) {
	return scanSchool(ctx, q, `SELECT id, name FROM schools WHERE id = $1`, id)
}

func SchoolByName(ctx context.Context, q Querier, name string) (*models.School, error) {
	return scanSchool(ctx, q, `SELECT id, name FROM schools WHERE name = $1`, name)
}

func scanSchool(ctx context.Context, q Querier, query string, arg any) (*models.School, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var s models.School
	err := q.QueryRowContext(ctx, query, arg).Scan(&s.ID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func ListSchools(ctx context.Context, q Querier) ([]models.School, error) {
	return querySchools(ctx, q, `SELECT id, name FROM schools ORDER BY name`)
}

// SearchSchools Школы, в названии которых встречается подстрока (без учёта регистра)
func SearchSchools(ctx context.Context, q Querier, substr string, limit int) ([]models.School, error) {
	return querySchools(ctx, q, `
		SELECT id, name FROM schools
		WHERE position(lower($1) IN lower(name)) > 0
		ORDER BY position(lower($1) IN lower(name)), name
		LIMIT $2
	`, substr, limit)
}

func querySchools(ctx context.Context, q Querier, query string, args ...any) ([]models.School, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.School
	for rows.Next() {
		var s models.School
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
