package service

import (
	"context"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

type TeacherInput struct {
	SchoolID int64
	Name     string
	Tags     []string
}

type TeacherUpdate struct {
	Name *string
	Tags *[]string
}

func (s *Service) CreateTeacher(ctx context.Context, in TeacherInput) (models.Teacher, error) {
	if len(in.Tags) > maxTags {
		return models.Teacher{}, Validationf("teacher can have at most %d tags", maxTags)
	}
	var id int64
	err := s.tx(ctx, func(q db.Querier) error {
		if _, err := getSchool(ctx, q, in.SchoolID); err != nil {
			return err
		}
		if err := checkTeacherName(ctx, q, in.SchoolID, in.Name, 0); err != nil {
			return err
		}
		var err error
		id, err = db.CreateTeacher(ctx, q, models.Teacher{SchoolID: in.SchoolID, Name: in.Name})
		if err != nil {
			return err
		}
		return setTeacherTags(ctx, q, id, in.Tags)
	})
	if err != nil {
		return models.Teacher{}, err
	}
	return getTeacher(ctx, s.db, id)
}

func (s *Service) UpdateTeacher(ctx context.Context, id int64, upd TeacherUpdate) (models.Teacher, error) {
	if upd.Tags != nil && len(*upd.Tags) > maxTags {
		return models.Teacher{}, Validationf("teacher can have at most %d tags", maxTags)
	}
	err := s.tx(ctx, func(q db.Querier) error {
		t, err := getTeacher(ctx, q, id)
		if err != nil {
			return err
		}
		if upd.Name != nil && *upd.Name != t.Name {
			if err := checkTeacherName(ctx, q, t.SchoolID, *upd.Name, t.ID); err != nil {
				return err
			}
			t.Name = *upd.Name
		}
		if err := db.UpdateTeacher(ctx, q, t); err != nil {
			return err
		}
		if upd.Tags != nil {
			return setTeacherTags(ctx, q, t.ID, *upd.Tags)
		}
		return nil
	})
	if err != nil {
		return models.Teacher{}, err
	}
	return getTeacher(ctx, s.db, id)
}

func checkTeacherName(ctx context.Context, q db.Querier, schoolID int64, name string, self int64) error {
	v, err := db.TeacherByName(ctx, q, schoolID, name)
	if err != nil {
		return err
	}
	if v != nil && v.ID != self {
		return Conflictf("Teacher with name %q already exists in school %d", name, schoolID)
	}
	return nil
}

func setTeacherTags(ctx context.Context, q db.Querier, teacherID int64, labels []string) error {
	ids, err := db.EnsureTags(ctx, q, uniqueLabels(labels))
	if err != nil {
		return err
	}
	return db.SetTeacherTags(ctx, q, teacherID, ids)
}
