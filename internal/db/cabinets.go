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

const cabinetSelect = `
	SELECT c.id, c.school_id, c.corpus_id, c.floor, c.name,
	       ARRAY(SELECT t.label FROM cabinet_tags ct JOIN tags t ON t.id = ct.tag_id
	             WHERE ct.cabinet_id = c.id ORDER BY t.label)
	FROM cabinets c`

func CreateCabinet(ctx context.Context, q Querier, c models.Cabinet) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO cabinets (school_id, corpus_id, floor, name)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.SchoolID, c.CorpusID, c.Floor, c.Name).Scan(&id)
	return id, err
}

func UpdateCabinet(ctx context.Context, q Querier, c models.Cabinet) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		UPDATE cabinets SET school_id = $2, corpus_id = $3, floor = $4, name = $5
		WHERE id = $1
	`, c.ID, c.SchoolID, c.CorpusID, c.Floor, c.Name)
	return err
}

func SetCabinetTags(ctx context.Context, q Querier, cabinetID int64, tagIDs []int64) error {
	return setTags(ctx, q, "cabinet_tags", "cabinet_id", cabinetID, tagIDs)
}

func GetCabinet(ctx context.Context, q Querier, id int64) (*models.Cabinet, error) {
	return scanCabinet(ctx, q, cabinetSelect+` WHERE c.id = $1`, id)
}

func CabinetByName(ctx context.Context, q Querier, corpusID int64, name string) (*models.Cabinet, error) {
	return scanCabinet(ctx, q, cabinetSelect+` WHERE c.corpus_id = $1 AND c.name = $2`, corpusID, name)
}

func scanCabinet(ctx context.Context, q Querier, query string, args ...any) (*models.Cabinet, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var c models.Cabinet
	var tags pq.StringArray
	err := q.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.SchoolID, &c.CorpusID, &c.Floor, &c.Name, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Tags = []string(tags)
	return &c, nil
}

func ListCabinetsBySchool(ctx context.Context, q Querier, schoolID int64) ([]models.Cabinet, error) {
	return queryCabinets(ctx, q, cabinetSelect+` WHERE c.school_id = $1 ORDER BY c.id`, schoolID)
}

// ListCabinetsByCorpus Кабинеты корпуса, опционально только на этаже floor
func ListCabinetsByCorpus(ctx context.Context, q Querier, corpusID int64, floor *int) ([]models.Cabinet, error) {
	query := cabinetSelect + ` WHERE c.corpus_id = $1`
	args := []any{corpusID}
	if floor != nil {
		args = append(args, *floor)
		query += fmt.Sprintf(` AND c.floor = $%d`, len(args))
	}
	return queryCabinets(ctx, q, query+` ORDER BY c.id`, args...)
}

func ListCabinetsByTag(ctx context.Context, q Querier, schoolID, tagID int64) ([]models.Cabinet, error) {
	return queryCabinets(ctx, q, cabinetSelect+`
		WHERE c.school_id = $1
		  AND EXISTS (SELECT 1 FROM cabinet_tags ct WHERE ct.cabinet_id = c.id AND ct.tag_id = $2)
		ORDER BY c.id`, schoolID, tagID)
}

func queryCabinets(ctx context.Context, q Querier, query string, args ...any) ([]models.Cabinet, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Cabinet
	for rows.Next() {
		var c models.Cabinet
		var tags pq.StringArray
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.CorpusID, &c.Floor, &c.Name, &tags); err != nil {
			return nil, err
		}
		c.Tags = []string(tags)
		out = append(out, c)
	}
	return out, rows.Err()
}

// OccupiedCabinetIDs id кабинетов корпуса, занятых уроками в этот день
// (и в этот номер урока, если он задан).
func OccupiedCabinetIDs(ctx context.Context, q Querier, corpusID int64, day int, lessonNumber *int) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT DISTINCT l.cabinet_id
		FROM lessons l
		JOIN lesson_numbers ln ON ln.id = l.lesson_number_id
		WHERE l.corpus_id = $1 AND l.day_of_week = $2`
	args := []any{corpusID, day}
	if lessonNumber != nil {
		args = append(args, *lessonNumber)
		query += fmt.Sprintf(` AND ln.number = $%d`, len(args))
	}

	rows, err := q.QueryContext(ctx, query, args...)
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
