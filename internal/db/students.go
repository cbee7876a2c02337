package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
)

func CreateStudent(ctx context.Context, q Querier, s models.StudentData) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO students (school_id, subclass_id, parent_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, s.SchoolID, s.SubclassID, s.ParentID).Scan(&id)
	return id, err
}

// ListChildren Дети родителя (students.parent_id)
func ListChildren(ctx context.Context, q Querier, parentID int64) ([]models.StudentData, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT id, school_id, subclass_id, parent_id
		FROM students
		WHERE parent_id = $1
		ORDER BY id
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.StudentData
	for rows.Next() {
		var s models.StudentData
		var p sql.NullInt64
		if err := rows.Scan(&s.StudentID, &s.SchoolID, &s.SubclassID, &p); err != nil {
			return nil, err
		}
		if p.Valid {
			v := p.Int64
			s.ParentID = &v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteChild удаляет ребёнка только в рамках указанного родителя.
func DeleteChild(ctx context.Context, q Querier, parentID, childID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `DELETE FROM students WHERE id = $1 AND parent_id = $2`, childID, parentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
