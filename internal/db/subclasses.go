package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
)

const subclassCols = `id, school_id, educational_level, identificator, additional_identificator`

// SubclassFilter: nil-поле означает «любое значение».
type SubclassFilter struct {
	EducationalLevel        *int
	Identificator           *string
	AdditionalIdentificator *string
}

func (f SubclassFilter) Empty() bool {
	return f.EducationalLevel == nil && f.Identificator == nil && f.AdditionalIdentificator == nil
}

func CreateSubclass(ctx context.Context, q Querier, s models.Subclass) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO subclasses (school_id, educational_level, identificator, additional_identificator)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, s.SchoolID, s.EducationalLevel, s.Identificator, s.AdditionalIdentificator).Scan(&id)
	return id, err
}

func UpdateSubclass(ctx context.Context, q Querier, s models.Subclass) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `
		UPDATE subclasses
		SET school_id = $2, educational_level = $3, identificator = $4, additional_identificator = $5
		WHERE id = $1
	`, s.ID, s.SchoolID, s.EducationalLevel, s.Identificator, s.AdditionalIdentificator)
	return err
}

func GetSubclass(ctx context.Context, q Querier, id int64) (*models.Subclass, error) {
	return scanSubclass(ctx, q, `SELECT `+subclassCols+` FROM subclasses WHERE id = $1`, id)
}

func SubclassByParams(ctx context.Context, q Querier, schoolID int64, level int, ident, addIdent string) (*models.Subclass, error) {
	return scanSubclass(ctx, q, `
		SELECT `+subclassCols+` FROM subclasses
		WHERE school_id = $1 AND educational_level = $2 AND identificator = $3 AND additional_identificator = $4
	`, schoolID, level, ident, addIdent)
}

func scanSubclass(ctx context.Context, q Querier, query string, args ...any) (*models.Subclass, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var s models.Subclass
	err := q.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.SchoolID, &s.EducationalLevel, &s.Identificator, &s.AdditionalIdentificator)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func ListSubclasses(ctx context.Context, q Querier, schoolID int64) ([]models.Subclass, error) {
	return FilterSubclasses(ctx, q, schoolID, SubclassFilter{})
}

// FilterSubclasses Классы школы по частичному набору параметров
func FilterSubclasses(ctx context.Context, q Querier, schoolID int64, f SubclassFilter) ([]models.Subclass, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + subclassCols + ` FROM subclasses WHERE school_id = $1`
	args := []any{schoolID}
	if f.EducationalLevel != nil {
		args = append(args, *f.EducationalLevel)
		query += fmt.Sprintf(` AND educational_level = $%d`, len(args))
	}
	if f.Identificator != nil {
		args = append(args, *f.Identificator)
		query += fmt.Sprintf(` AND identificator = $%d`, len(args))
	}
	if f.AdditionalIdentificator != nil {
		args = append(args, *f.AdditionalIdentificator)
		query += fmt.Sprintf(` AND additional_identificator = $%d`, len(args))
	}
	query += ` ORDER BY educational_level, identificator, additional_identificator`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Subclass
	for rows.Next() {
		var s models.Subclass
		if err := rows.Scan(&s.ID, &s.SchoolID, &s.EducationalLevel, &s.Identificator, &s.AdditionalIdentificator); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
