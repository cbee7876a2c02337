package service

import (
	"context"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

type SubclassInput struct {
	SchoolID                int64
	EducationalLevel        int
	Identificator           string
	AdditionalIdentificator string
}

type SubclassUpdate struct {
	EducationalLevel        *int
	Identificator           *string
	AdditionalIdentificator *string
}

func (s *Service) CreateSubclass(ctx context.Context, in SubclassInput) (models.Subclass, error) {
	var out models.Subclass
	err := s.tx(ctx, func(q db.Querier) error {
		if _, err := getSchool(ctx, q, in.SchoolID); err != nil {
			return err
		}
		sc := models.Subclass{
			SchoolID:                in.SchoolID,
			EducationalLevel:        in.EducationalLevel,
			Identificator:           in.Identificator,
			AdditionalIdentificator: in.AdditionalIdentificator,
		}
		if err := checkSubclassUnique(ctx, q, sc); err != nil {
			return err
		}
		id, err := db.CreateSubclass(ctx, q, sc)
		if err != nil {
			return err
		}
		sc.ID = id
		out = sc
		return nil
	})
	return out, err
}

func (s *Service) UpdateSubclass(ctx context.Context, id int64, upd SubclassUpdate) (models.Subclass, error) {
	var out models.Subclass
	err := s.tx(ctx, func(q db.Querier) error {
		sc, err := getSubclass(ctx, q, id)
		if err != nil {
			return err
		}
		before := sc
		if upd.EducationalLevel != nil {
			sc.EducationalLevel = *upd.EducationalLevel
		}
		if upd.Identificator != nil {
			sc.Identificator = *upd.Identificator
		}
		if upd.AdditionalIdentificator != nil {
			sc.AdditionalIdentificator = *upd.AdditionalIdentificator
		}
		if sc != before {
			if err := checkSubclassUnique(ctx, q, sc); err != nil {
				return err
			}
		}
		if err := db.UpdateSubclass(ctx, q, sc); err != nil {
			return err
		}
		out = sc
		return nil
	})
	return out, err
}

func checkSubclassUnique(ctx context.Context, q db.Querier, sc models.Subclass) error {
	v, err := db.SubclassByParams(ctx, q, sc.SchoolID, sc.EducationalLevel, sc.Identificator, sc.AdditionalIdentificator)
	if err != nil {
		return err
	}
	if v != nil && v.ID != sc.ID {
		return Conflictf("Subclass %d%s%s already exists in school %d",
			sc.EducationalLevel, sc.Identificator, sc.AdditionalIdentificator, sc.SchoolID)
	}
	return nil
}
