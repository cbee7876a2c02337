package service

import (
	"context"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

func (s *Service) CreateSchool(ctx context.Context, name string) (models.School, error) {
	var out models.School
	err := s.tx(ctx, func(q db.Querier) error {
		if err := checkSchoolName(ctx, q, name, 0); err != nil {
			return err
		}
		id, err := db.CreateSchool(ctx, q, name)
		if err != nil {
			return err
		}
		out = models.School{ID: id, Name: name}
		return nil
	})
	return out, err
}

// UpdateSchool меняет только переданные поля.
func (s *Service) UpdateSchool(ctx context.Context, id int64, name *string) (models.School, error) {
	var out models.School
	err := s.tx(ctx, func(q db.Querier) error {
		sc, err := getSchool(ctx, q, id)
		if err != nil {
			return err
		}
		if name != nil && *name != sc.Name {
			if err := checkSchoolName(ctx, q, *name, id); err != nil {
				return err
			}
			sc.Name = *name
		}
		if err := db.UpdateSchool(ctx, q, sc); err != nil {
			return err
		}
		out = sc
		return nil
	})
	return out, err
}

func checkSchoolName(ctx context.Context, q db.Querier, name string, self int64) error {
	v, err := db.SchoolByName(ctx, q, name)
	if err != nil {
		return err
	}
	if v != nil && v.ID != self {
		return Conflictf("School with name %q already exists", name)
	}
	return nil
}
