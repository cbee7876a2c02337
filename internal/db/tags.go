package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
)

// EnsureTags создаёт недостающие метки и возвращает id в порядке labels.
func EnsureTags(ctx context.Context, q Querier, labels []string) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	ids := make([]int64, 0, len(labels))
	for _, l := range labels {
		var id int64
		if err := q.QueryRowContext(ctx, `
			INSERT INTO tags (label) VALUES ($1)
			ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label
			RETURNING id
		`, l).Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func TagByLabel(ctx context.Context, q Querier, label string) (*models.Tag, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var t models.Tag
	err := q.QueryRowContext(ctx, `SELECT id, label FROM tags WHERE label = $1`, label).Scan(&t.ID, &t.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func ListTags(ctx context.Context, q Querier) ([]models.Tag, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `SELECT id, label FROM tags ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Label); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// setTags перезаписывает связи объекта с метками в таблице связей.
func setTags(ctx context.Context, q Querier, table, col string, ownerID int64, tagIDs []int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+col+` = $1`, ownerID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO `+table+` (`+col+`, tag_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, ownerID, int64Array(tagIDs))
	return err
}
