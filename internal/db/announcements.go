package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
)

// CreateAnnouncement сохраняет объявление в статусе pending и связывает его с ролями.
func CreateAnnouncement(ctx context.Context, q Querier, link string, title *string, roleIDs []int64) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	if err := q.QueryRowContext(ctx, `
		INSERT INTO announcements (link, title, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`, link, title, string(models.AnnouncementPending)).Scan(&id); err != nil {
		return 0, err
	}
	if len(roleIDs) == 0 {
		return id, nil
	}
	if _, err := q.ExecContext(ctx, `
		INSERT INTO announcement_roles (announcement_id, role_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, id, int64Array(roleIDs)); err != nil {
		return 0, err
	}
	return id, nil
}

func SetAnnouncementStatus(ctx context.Context, q Querier, id int64, status models.AnnouncementStatus) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `UPDATE announcements SET status = $2 WHERE id = $1`, id, string(status))
	return err
}

// RoleHistory Последние доставленные объявления роли, новые первыми
func RoleHistory(ctx context.Context, q Querier, roleID int64, limit int) ([]models.HistoryEntry, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT an.link, an.title
		FROM announcement_roles ar
		JOIN announcements an ON an.id = ar.announcement_id
		WHERE ar.role_id = $1 AND an.status = $2
		ORDER BY an.id DESC
		LIMIT $3
	`, roleID, string(models.AnnouncementDelivered), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.HistoryEntry{}
	for rows.Next() {
		var h models.HistoryEntry
		var title sql.NullString
		if err := rows.Scan(&h.Link, &title); err != nil {
			return nil, err
		}
		if title.Valid {
			h.Title = &title.String
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
