package service

import (
	"context"
	"sort"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

type LessonInput struct {
	CabinetID      int64
	TeacherID      int64
	LessonNumberID int64
	DayOfWeek      int
	Subject        string
	SubclassIDs    []int64
}

// LessonUpdate: SubclassIDs != nil заменяет весь набор классов.
type LessonUpdate struct {
	CabinetID      *int64
	TeacherID      *int64
	LessonNumberID *int64
	DayOfWeek      *int
	Subject        *string
	SubclassIDs    *[]int64
}

func checkDay(day int) error {
	if day < 1 || day > 7 {
		return Validationf("day_of_week must be in [1, 7], got %d", day)
	}
	return nil
}

// CreateLesson: школа и корпус урока берутся из кабинета.
func (s *Service) CreateLesson(ctx context.Context, in LessonInput) (models.Lesson, error) {
	if err := checkDay(in.DayOfWeek); err != nil {
		return models.Lesson{}, err
	}
	var id int64
	err := s.tx(ctx, func(q db.Querier) error {
		cab, err := getCabinet(ctx, q, in.CabinetID)
		if err != nil {
			return err
		}
		l := models.Lesson{
			SchoolID:       cab.SchoolID,
			CorpusID:       cab.CorpusID,
			CabinetID:      cab.ID,
			TeacherID:      in.TeacherID,
			LessonNumberID: in.LessonNumberID,
			DayOfWeek:      in.DayOfWeek,
			Subject:        in.Subject,
			SubclassIDs:    uniqueIDs(in.SubclassIDs),
		}
		if err := checkLessonRefs(ctx, q, l, true, true, true); err != nil {
			return err
		}
		if err := checkLessonUnique(ctx, q, l); err != nil {
			return err
		}
		id, err = db.CreateLesson(ctx, q, l)
		return err
	})
	if err != nil {
		return models.Lesson{}, err
	}
	return getLesson(ctx, s.db, id)
}

func (s *Service) UpdateLesson(ctx context.Context, id int64, upd LessonUpdate) (models.Lesson, error) {
	if upd.DayOfWeek != nil {
		if err := checkDay(*upd.DayOfWeek); err != nil {
			return models.Lesson{}, err
		}
	}
	err := s.tx(ctx, func(q db.Querier) error {
		l, err := getLesson(ctx, q, id)
		if err != nil {
			return err
		}
		before := l
		if upd.CabinetID != nil && *upd.CabinetID != l.CabinetID {
			cab, err := getCabinet(ctx, q, *upd.CabinetID)
			if err != nil {
				return err
			}
			if err := sameSchool("Cabinet", cab.SchoolID, l.SchoolID); err != nil {
				return err
			}
			l.CabinetID = cab.ID
			l.CorpusID = cab.CorpusID
		}
		if upd.TeacherID != nil {
			l.TeacherID = *upd.TeacherID
		}
		if upd.LessonNumberID != nil {
			l.LessonNumberID = *upd.LessonNumberID
		}
		if upd.DayOfWeek != nil {
			l.DayOfWeek = *upd.DayOfWeek
		}
		if upd.Subject != nil {
			l.Subject = *upd.Subject
		}
		if upd.SubclassIDs != nil {
			l.SubclassIDs = uniqueIDs(*upd.SubclassIDs)
		}
		if err := checkLessonRefs(ctx, q, l,
			l.TeacherID != before.TeacherID,
			l.LessonNumberID != before.LessonNumberID,
			upd.SubclassIDs != nil,
		); err != nil {
			return err
		}
		if lessonKey(l) != lessonKey(before) {
			if err := checkLessonUnique(ctx, q, l); err != nil {
				return err
			}
		}
		return db.UpdateLesson(ctx, q, l)
	})
	if err != nil {
		return models.Lesson{}, err
	}
	return getLesson(ctx, s.db, id)
}

// DeleteLesson возвращает id удалённого урока.
func (s *Service) DeleteLesson(ctx context.Context, id int64) (int64, error) {
	err := s.tx(ctx, func(q db.Querier) error {
		ok, err := db.DeleteLesson(ctx, q, id)
		if err != nil {
			return err
		}
		if !ok {
			return NotFoundf("Lesson with id %d does not exist", id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// checkLessonRefs проверяет, что подставленные учитель, номер урока и классы
// существуют и принадлежат школе урока.
func checkLessonRefs(ctx context.Context, q db.Querier, l models.Lesson, teacher, number, subclasses bool) error {
	if number {
		ln, err := getLessonNumber(ctx, q, l.LessonNumberID)
		if err != nil {
			return err
		}
		if err := sameSchool("Lesson number", ln.SchoolID, l.SchoolID); err != nil {
			return err
		}
	}
	if teacher {
		t, err := getTeacher(ctx, q, l.TeacherID)
		if err != nil {
			return err
		}
		if err := sameSchool("Teacher", t.SchoolID, l.SchoolID); err != nil {
			return err
		}
	}
	if subclasses {
		for _, sid := range l.SubclassIDs {
			sc, err := getSubclass(ctx, q, sid)
			if err != nil {
				return err
			}
			if err := sameSchool("Subclass", sc.SchoolID, l.SchoolID); err != nil {
				return err
			}
		}
	}
	return nil
}

func lessonKey(l models.Lesson) db.LessonKey {
	return db.LessonKey{
		SchoolID:       l.SchoolID,
		CorpusID:       l.CorpusID,
		CabinetID:      l.CabinetID,
		LessonNumberID: l.LessonNumberID,
		DayOfWeek:      l.DayOfWeek,
		TeacherID:      l.TeacherID,
	}
}

func checkLessonUnique(ctx context.Context, q db.Querier, l models.Lesson) error {
	v, err := db.LessonByKey(ctx, q, lessonKey(l))
	if err != nil {
		return err
	}
	if v != nil && v.ID != l.ID {
		return Conflictf("Lesson in cabinet %d with lesson number %d on day %d for teacher %d already exists",
			l.CabinetID, l.LessonNumberID, l.DayOfWeek, l.TeacherID)
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DayLessons: уроки одного дня недели.
type DayLessons struct {
	DayOfWeek int                 `json:"day_of_week"`
	Lessons   []models.LessonView `json:"lessons"`
}

// LessonOwner: чьё расписание: ровно одно из полей.
type LessonOwner struct {
	TeacherID  *int64
	SubclassID *int64
}

func (o LessonOwner) check() error {
	if (o.TeacherID == nil) == (o.SubclassID == nil) {
		return Validationf("You must specify a subclass_id or a teacher_id")
	}
	return nil
}

func (o LessonOwner) filter(schoolID int64) db.LessonFilter {
	return db.LessonFilter{SchoolID: schoolID, TeacherID: o.TeacherID, SubclassID: o.SubclassID}
}

// checkOwner убеждается, что учитель или класс существует и относится к школе.
func checkOwner(ctx context.Context, q db.Querier, schoolID int64, o LessonOwner) error {
	if _, err := getSchool(ctx, q, schoolID); err != nil {
		return err
	}
	if o.TeacherID != nil {
		t, err := getTeacher(ctx, q, *o.TeacherID)
		if err != nil {
			return err
		}
		return sameSchool("Teacher", t.SchoolID, schoolID)
	}
	sc, err := getSubclass(ctx, q, *o.SubclassID)
	if err != nil {
		return err
	}
	return sameSchool("Subclass", sc.SchoolID, schoolID)
}

func (s *Service) LessonsForDay(ctx context.Context, schoolID int64, day int, o LessonOwner) ([]models.LessonView, error) {
	if err := o.check(); err != nil {
		return nil, err
	}
	if err := checkDay(day); err != nil {
		return nil, err
	}
	if err := checkOwner(ctx, s.db, schoolID, o); err != nil {
		return nil, err
	}
	f := o.filter(schoolID)
	f.Days = []int{day}
	return db.ListLessonViews(ctx, s.db, f)
}

// LessonsForRange уроки по дням от start до end включительно; пустые дни тоже в ответе.
func (s *Service) LessonsForRange(ctx context.Context, schoolID int64, start, end int, o LessonOwner) ([]DayLessons, error) {
	if err := o.check(); err != nil {
		return nil, err
	}
	if err := checkDay(start); err != nil {
		return nil, err
	}
	if err := checkDay(end); err != nil {
		return nil, err
	}
	if start > end {
		return nil, Validationf("start_day %d must not be greater than end_day %d", start, end)
	}
	if err := checkOwner(ctx, s.db, schoolID, o); err != nil {
		return nil, err
	}
	f := o.filter(schoolID)
	for d := start; d <= end; d++ {
		f.Days = append(f.Days, d)
	}
	views, err := db.ListLessonViews(ctx, s.db, f)
	if err != nil {
		return nil, err
	}
	return groupByDay(views, start, end), nil
}

func groupByDay(views []models.LessonView, start, end int) []DayLessons {
	out := make([]DayLessons, 0, end-start+1)
	for d := start; d <= end; d++ {
		out = append(out, DayLessons{DayOfWeek: d, Lessons: []models.LessonView{}})
	}
	for _, v := range views {
		i := v.DayOfWeek - start
		if i >= 0 && i < len(out) {
			out[i].Lessons = append(out[i].Lessons, v)
		}
	}
	return out
}

// CertainLesson урок по дню и номеру урока.
func (s *Service) CertainLesson(ctx context.Context, schoolID int64, day, number int, o LessonOwner) (models.LessonView, error) {
	if err := o.check(); err != nil {
		return models.LessonView{}, err
	}
	if err := checkDay(day); err != nil {
		return models.LessonView{}, err
	}
	if err := checkOwner(ctx, s.db, schoolID, o); err != nil {
		return models.LessonView{}, err
	}
	ln, err := db.LessonNumberByNumber(ctx, s.db, schoolID, number)
	if err != nil {
		return models.LessonView{}, err
	}
	if ln == nil {
		return models.LessonView{}, NotFoundf("Lesson number %d does not exist in school %d", number, schoolID)
	}
	f := o.filter(schoolID)
	f.Days = []int{day}
	f.LessonNumberID = &ln.ID
	views, err := db.ListLessonViews(ctx, s.db, f)
	if err != nil {
		return models.LessonView{}, err
	}
	if len(views) == 0 {
		return models.LessonView{}, NotFoundf("Lesson on day %d with number %d does not exist", day, number)
	}
	return views[0], nil
}
