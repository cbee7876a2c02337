package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
	"github.com/lib/pq"
)

// LessonKey: составной ключ уникальности урока.
type LessonKey struct {
	SchoolID       int64
	CorpusID       int64
	CabinetID      int64
	LessonNumberID int64
	DayOfWeek      int
	TeacherID      int64
}

// LessonFilter: nil/пустые поля не фильтруют.
type LessonFilter struct {
	SchoolID       int64
	LessonID       *int64
	TeacherID      *int64
	SubclassID     *int64
	LessonNumberID *int64
	Days           []int
}

func CreateLesson(ctx context.Context, q Querier, l models.Lesson) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	if err := q.QueryRowContext(ctx, `
		INSERT INTO lessons (school_id, corpus_id, cabinet_id, teacher_id, lesson_number_id, day_of_week, subject)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, l.SchoolID, l.CorpusID, l.CabinetID, l.TeacherID, l.LessonNumberID, l.DayOfWeek, l.Subject).Scan(&id); err != nil {
		return 0, err
	}
	if err := setLessonSubclasses(ctx, q, id, l.SubclassIDs); err != nil {
		return 0, err
	}
	return id, nil
}

func UpdateLesson(ctx context.Context, q Querier, l models.Lesson) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := q.ExecContext(ctx, `
		UPDATE lessons
		SET corpus_id = $2, cabinet_id = $3, teacher_id = $4, lesson_number_id = $5, day_of_week = $6, subject = $7
		WHERE id = $1
	`, l.ID, l.CorpusID, l.CabinetID, l.TeacherID, l.LessonNumberID, l.DayOfWeek, l.Subject); err != nil {
		return err
	}
	return setLessonSubclasses(ctx, q, l.ID, l.SubclassIDs)
}

func setLessonSubclasses(ctx context.Context, q Querier, lessonID int64, subclassIDs []int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM lesson_subclasses WHERE lesson_id = $1`, lessonID); err != nil {
		return err
	}
	if len(subclassIDs) == 0 {
		return nil
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO lesson_subclasses (lesson_id, subclass_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, lessonID, int64Array(subclassIDs))
	return err
}

// DeleteLesson возвращает false, если урока не было.
func DeleteLesson(ctx context.Context, q Querier, id int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const lessonCols = `l.id, l.school_id, l.corpus_id, l.cabinet_id, l.teacher_id, l.lesson_number_id, l.day_of_week, l.subject,
	ARRAY(SELECT ls.subclass_id FROM lesson_subclasses ls WHERE ls.lesson_id = l.id ORDER BY ls.subclass_id)`

func GetLesson(ctx context.Context, q Querier, id int64) (*models.Lesson, error) {
	return scanLesson(ctx, q, `SELECT `+lessonCols+` FROM lessons l WHERE l.id = $1`, id)
}

func LessonByKey(ctx context.Context, q Querier, k LessonKey) (*models.Lesson, error) {
	return scanLesson(ctx, q, `
		SELECT `+lessonCols+` FROM lessons l
		WHERE l.school_id = $1 AND l.corpus_id = $2 AND l.cabinet_id = $3
		  AND l.lesson_number_id = $4 AND l.day_of_week = $5 AND l.teacher_id = $6
	`, k.SchoolID, k.CorpusID, k.CabinetID, k.LessonNumberID, k.DayOfWeek, k.TeacherID)
}

func scanLesson(ctx context.Context, q Querier, query string, args ...any) (*models.Lesson, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var l models.Lesson
	var subclasses pq.Int64Array
	err := q.QueryRowContext(ctx, query, args...).Scan(&l.ID, &l.SchoolID, &l.CorpusID, &l.CabinetID,
		&l.TeacherID, &l.LessonNumberID, &l.DayOfWeek, &l.Subject, &subclasses)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.SubclassIDs = []int64(subclasses)
	return &l, nil
}

// ListLessonViews Уроки с подгруженными номером, учителем, кабинетом, корпусом и классами,
// отсортированные по дню и номеру урока.
func ListLessonViews(ctx context.Context, q Querier, f LessonFilter) ([]models.LessonView, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT l.id, l.day_of_week, l.subject,
		       ln.id, ln.school_id, ln.number, ln.time_start, ln.time_end,
		       t.id, t.school_id, t.name,
		       c.id, c.school_id, c.corpus_id, c.floor, c.name,
		       co.id, co.school_id, co.name, co.address, co.canteen_text
		FROM lessons l
		JOIN lesson_numbers ln ON ln.id = l.lesson_number_id
		JOIN teachers t        ON t.id = l.teacher_id
		JOIN cabinets c        ON c.id = l.cabinet_id
		JOIN corpuses co       ON co.id = l.corpus_id
		WHERE l.school_id = $1`
	args := []any{f.SchoolID}
	if f.LessonID != nil {
		args = append(args, *f.LessonID)
		query += fmt.Sprintf(` AND l.id = $%d`, len(args))
	}
	if f.TeacherID != nil {
		args = append(args, *f.TeacherID)
		query += fmt.Sprintf(` AND l.teacher_id = $%d`, len(args))
	}
	if f.SubclassID != nil {
		args = append(args, *f.SubclassID)
		query += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM lesson_subclasses ls WHERE ls.lesson_id = l.id AND ls.subclass_id = $%d)`, len(args))
	}
	if f.LessonNumberID != nil {
		args = append(args, *f.LessonNumberID)
		query += fmt.Sprintf(` AND l.lesson_number_id = $%d`, len(args))
	}
	if len(f.Days) > 0 {
		days := make([]int64, len(f.Days))
		for i, d := range f.Days {
			days[i] = int64(d)
		}
		args = append(args, int64Array(days))
		query += fmt.Sprintf(` AND l.day_of_week = ANY($%d)`, len(args))
	}
	query += ` ORDER BY l.day_of_week, ln.number, l.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.LessonView
	index := map[int64]int{}
	for rows.Next() {
		var v models.LessonView
		var canteen sql.NullString
		if err := rows.Scan(&v.ID, &v.DayOfWeek, &v.Subject,
			&v.LessonNumber.ID, &v.LessonNumber.SchoolID, &v.LessonNumber.Number, &v.LessonNumber.TimeStart, &v.LessonNumber.TimeEnd,
			&v.Teacher.ID, &v.Teacher.SchoolID, &v.Teacher.Name,
			&v.Cabinet.ID, &v.Cabinet.SchoolID, &v.Cabinet.CorpusID, &v.Cabinet.Floor, &v.Cabinet.Name,
			&v.Corpus.ID, &v.Corpus.SchoolID, &v.Corpus.Name, &v.Corpus.Address, &canteen,
		); err != nil {
			return nil, err
		}
		if canteen.Valid {
			v.Corpus.CanteenText = &canteen.String
		}
		v.Subclasses = []models.Subclass{}
		index[v.ID] = len(out)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(out))
	for _, v := range out {
		ids = append(ids, v.ID)
	}
	srows, err := q.QueryContext(ctx, `
		SELECT ls.lesson_id, s.id, s.school_id, s.educational_level, s.identificator, s.additional_identificator
		FROM lesson_subclasses ls
		JOIN subclasses s ON s.id = ls.subclass_id
		WHERE ls.lesson_id = ANY($1)
		ORDER BY s.educational_level, s.identificator, s.additional_identificator
	`, int64Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = srows.Close() }()

	for srows.Next() {
		var lessonID int64
		var s models.Subclass
		if err := srows.Scan(&lessonID, &s.ID, &s.SchoolID, &s.EducationalLevel, &s.Identificator, &s.AdditionalIdentificator); err != nil {
			return nil, err
		}
		if i, ok := index[lessonID]; ok {
			out[i].Subclasses = append(out[i].Subclasses, s)
		}
	}
	return out, srows.Err()
}
