package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
	"github.com/lib/pq"
)

const teacherSelect = `
	SELECT tc.id, tc.school_id, tc.name,
	       ARRAY(SELECT t.label FROM teacher_tags tt JOIN tags t ON t.id = tt.tag_id
	             WHERE tt.teacher_id = tc.id ORDER BY t.label)
	FROM teachers tc`

func CreateTeacher(ctx context.Context, q Querier, t models.Teacher) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `INSERT INTO teachers (school_id, name) VALUES ($1, $2) RETURNING id`,
		t.SchoolID, t.Name).Scan(&id)
	return id, err
}

func UpdateTeacher(ctx context.Context, q Querier, t models.Teacher) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `UPDATE teachers SET school_id = $2, name = $3 WHERE id = $1`, t.ID, t.SchoolID, t.Name)
	return err
}

func SetTeacherTags(ctx context.Context, q Querier, teacherID int64, tagIDs []int64) error {
	return setTags(ctx, q, "teacher_tags", "teacher_id", teacherID, tagIDs)
}

func GetTeacher(ctx context.Context, q Querier, id int64) (*models.Teacher, error) {
	return scanTeacher(ctx, q, teacherSelect+` WHERE tc.id = $1`, id)
}

func TeacherByName(ctx context.Context, q Querier, schoolID int64, name string) (*models.Teacher, error) {
	return scanTeacher(ctx, q, teacherSelect+` WHERE tc.school_id = $1 AND tc.name = $2`, schoolID, name)
}

func scanTeacher(ctx context.Context, q Querier, query string, args ...any) (*models.Teacher, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var t models.Teacher
	var tags pq.StringArray
	err := q.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.SchoolID, &t.Name, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Tags = []string(tags)
	return &t, nil
}

func ListTeachers(ctx context.Context, q Querier, schoolID int64) ([]models.Teacher, error) {
	return queryTeachers(ctx, q, teacherSelect+` WHERE tc.school_id = $1 ORDER BY tc.name`, schoolID)
}

func ListTeachersByTag(ctx context.Context, q Querier, schoolID, tagID int64) ([]models.Teacher, error) {
	return queryTeachers(ctx, q, teacherSelect+`
		WHERE tc.school_id = $1
		  AND EXISTS (SELECT 1 FROM teacher_tags tt WHERE tt.teacher_id = tc.id AND tt.tag_id = $2)
		ORDER BY tc.name`, schoolID, tagID)
}

func queryTeachers(ctx context.Context, q Querier, query string, args ...any) ([]models.Teacher, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Teacher
	for rows.Next() {
		var t models.Teacher
		var tags pq.StringArray
		if err := rows.Scan(&t.ID, &t.SchoolID, &t.Name, &tags); err != nil {
			return nil, err
		}
		t.Tags = []string(tags)
		out = append(out, t)
	}
	return out, rows.Err()
}
