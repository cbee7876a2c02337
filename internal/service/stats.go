package service

import (
	"context"

	"github.com/Spok95/skedule/internal/db"
)

type Stats struct {
	db.Counts
	StudentsByLevel        map[int]int64 `json:"students_by_level"`
	ParentsByChildrenCount map[int]int64 `json:"parents_by_children_count"`
	ChildrenByLevel        map[int]int64 `json:"children_by_level"`
	TeachersByLevel        map[int]int64 `json:"teachers_by_level"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var (
		out Stats
		err error
	)
	if out.Counts, err = db.CountStats(ctx, s.db); err != nil {
		return Stats{}, err
	}
	if out.StudentsByLevel, err = db.StudentsByLevel(ctx, s.db); err != nil {
		return Stats{}, err
	}
	if out.ParentsByChildrenCount, err = db.ParentsByChildrenCount(ctx, s.db); err != nil {
		return Stats{}, err
	}
	if out.ChildrenByLevel, err = db.ChildrenByLevel(ctx, s.db); err != nil {
		return Stats{}, err
	}
	if out.TeachersByLevel, err = db.TeachersByLevel(ctx, s.db); err != nil {
		return Stats{}, err
	}
	return out, nil
}
