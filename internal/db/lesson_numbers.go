package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
)

const lessonNumberCols = `id, school_id, number, time_start, time_end`

func CreateLessonNumber(ctx context.Context, q Querier, ln models.LessonNumber) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO lesson_numbers (school_id, number, time_start, time_end)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, ln.SchoolID, ln.Number, ln.TimeStart, ln.TimeEnd).Scan(&id)
	return id, err
}

func UpdateLessonNumber(ctx context.Context, q Querier, ln models.LessonNumber) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		UPDATE lesson_numbers SET number = $2, time_start = $3, time_end = $4
		WHERE id = $1
	`, ln.ID, ln.Number, ln.TimeStart, ln.TimeEnd)
	return err
}

func GetLessonNumber(ctx context.Context, q Querier, id int64) (*models.LessonNumber, error) {
	return scanLessonNumber(ctx, q, `SELECT `+lessonNumberCols+` FROM lesson_numbers WHERE id = $1`, id)
}

func LessonNumberByNumber(ctx context.Context, q Querier, schoolID int64, number int) (*models.LessonNumber, error) {
	return scanLessonNumber(ctx, q, `SELECT `+lessonNumberCols+` FROM lesson_numbers WHERE school_id = $1 AND number = $2`, schoolID, number)
}

func scanLessonNumber(ctx context.Context, q Querier, query string, args ...any) (*models.LessonNumber, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var ln models.LessonNumber
	err := q.QueryRowContext(ctx, query, args...).Scan(&ln.ID, &ln.SchoolID, &ln.Number, &ln.TimeStart, &ln.TimeEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ln, nil
}

func ListLessonNumbers(ctx context.Context, q Querier, schoolID int64) ([]models.LessonNumber, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `SELECT `+lessonNumberCols+` FROM lesson_numbers WHERE school_id = $1 ORDER BY number`, schoolID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.LessonNumber
	for rows.Next() {
		var ln models.LessonNumber
		if err := rows.Scan(&ln.ID, &ln.SchoolID, &ln.Number, &ln.TimeStart, &ln.TimeEnd); err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}
