package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

var timeRe = regexp.MustCompile(`^[0-2]?[0-9]:[0-5][0-9]$`)

// normalizeTime приводит "8:05" к "08:05"; часы не больше 23.
func normalizeTime(v string) (string, error) {
	v = strings.TrimSpace(v)
	if !timeRe.MatchString(v) {
		return "", Validationf("time %q must be in HH:MM format", v)
	}
	hh, mm, _ := strings.Cut(v, ":")
	h, _ := strconv.Atoi(hh)
	if h > 23 {
		return "", Validationf("time %q has hour greater than 23", v)
	}
	return fmt.Sprintf("%02d:%s", h, mm), nil
}

// checkTimeOrder сравнивает уже нормализованные HH:MM, строки сравнимы лексикографически.
func checkTimeOrder(start, end string) error {
	if start >= end {
		return Conflictf("time_start %s must be earlier than time_end %s", start, end)
	}
	return nil
}

type LessonNumberInput struct {
	SchoolID  int64
	Number    int
	TimeStart string
	TimeEnd   string
}

type LessonNumberUpdate struct {
	Number    *int
	TimeStart *string
	TimeEnd   *string
}

func (s *Service) CreateLessonNumber(ctx context.Context, in LessonNumberInput) (models.LessonNumber, error) {
	start, err := normalizeTime(in.TimeStart)
	if err != nil {
		return models.LessonNumber{}, err
	}
	end, err := normalizeTime(in.TimeEnd)
	if err != nil {
		return models.LessonNumber{}, err
	}
	if err := checkTimeOrder(start, end); err != nil {
		return models.LessonNumber{}, err
	}

	var out models.LessonNumber
	err = s.tx(ctx, func(q db.Querier) error {
		if _, err := getSchool(ctx, q, in.SchoolID); err != nil {
			return err
		}
		if err := checkLessonNumberUnique(ctx, q, in.SchoolID, in.Number, 0); err != nil {
			return err
		}
		ln := models.LessonNumber{SchoolID: in.SchoolID, Number: in.Number, TimeStart: start, TimeEnd: end}
		id, err := db.CreateLessonNumber(ctx, q, ln)
		if err != nil {
			return err
		}
		ln.ID = id
		out = ln
		return nil
	})
	return out, err
}

// UpdateLessonNumber: отсутствующая граница времени берётся из сохранённой записи.
func (s *Service) UpdateLessonNumber(ctx context.Context, id int64, upd LessonNumberUpdate) (models.LessonNumber, error) {
	var start, end *string
	if upd.TimeStart != nil {
		v, err := normalizeTime(*upd.TimeStart)
		if err != nil {
			return models.LessonNumber{}, err
		}
		start = &v
	}
	if upd.TimeEnd != nil {
		v, err := normalizeTime(*upd.TimeEnd)
		if err != nil {
			return models.LessonNumber{}, err
		}
		end = &v
	}

	var out models.LessonNumber
	err := s.tx(ctx, func(q db.Querier) error {
		ln, err := getLessonNumber(ctx, q, id)
		if err != nil {
			return err
		}
		if upd.Number != nil && *upd.Number != ln.Number {
			if err := checkLessonNumberUnique(ctx, q, ln.SchoolID, *upd.Number, ln.ID); err != nil {
				return err
			}
			ln.Number = *upd.Number
		}
		if start != nil {
			ln.TimeStart = *start
		}
		if end != nil {
			ln.TimeEnd = *end
		}
		if err := checkTimeOrder(ln.TimeStart, ln.TimeEnd); err != nil {
			return err
		}
		if err := db.UpdateLessonNumber(ctx, q, ln); err != nil {
			return err
		}
		out = ln
		return nil
	})
	return out, err
}

func checkLessonNumberUnique(ctx context.Context, q db.Querier, schoolID int64, number int, self int64) error {
	v, err := db.LessonNumberByNumber(ctx, q, schoolID, number)
	if err != nil {
		return err
	}
	if v != nil && v.ID != self {
		return Conflictf("Lesson number %d already exists in school %d", number, schoolID)
	}
	return nil
}
