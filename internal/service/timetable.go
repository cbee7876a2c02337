package service

import (
	"context"

	"github.com/Spok95/skedule/internal/export"
)

// Timetable собирает xlsx-расписание школы и имя файла для него.
func (s *Service) Timetable(ctx context.Context, schoolID int64) (*export.Workbook, string, error) {
	sc, err := getSchool(ctx, s.db, schoolID)
	if err != nil {
		return nil, "", err
	}
	lessons, err := s.ListLessons(ctx, schoolID)
	if err != nil {
		return nil, "", err
	}
	wb, err := export.TimetableWorkbook(lessons)
	if err != nil {
		return nil, "", err
	}
	return wb, export.TimetableFilename(sc.Name), nil
}
