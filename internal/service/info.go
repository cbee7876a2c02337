package service

import (
	"context"
	"sort"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

// Справочные запросы для бота и сайта. Все читают из пула, без транзакции.

func (s *Service) ListSchools(ctx context.Context) ([]models.School, error) {
	return nonNil(db.ListSchools(ctx, s.db))
}

func (s *Service) School(ctx context.Context, id int64) (models.School, error) {
	return getSchool(ctx, s.db, id)
}

func (s *Service) Corpus(ctx context.Context, id int64) (models.Corpus, error) {
	return getCorpus(ctx, s.db, id)
}

func (s *Service) Cabinet(ctx context.Context, id int64) (models.Cabinet, error) {
	return getCabinet(ctx, s.db, id)
}

func (s *Service) Teacher(ctx context.Context, id int64) (models.Teacher, error) {
	return getTeacher(ctx, s.db, id)
}

func (s *Service) Subclass(ctx context.Context, id int64) (models.Subclass, error) {
	return getSubclass(ctx, s.db, id)
}

func (s *Service) LessonNumber(ctx context.Context, id int64) (models.LessonNumber, error) {
	return getLessonNumber(ctx, s.db, id)
}

// Lesson возвращает урок со связанными сущностями.
func (s *Service) Lesson(ctx context.Context, id int64) (models.LessonView, error) {
	l, err := getLesson(ctx, s.db, id)
	if err != nil {
		return models.LessonView{}, err
	}
	views, err := db.ListLessonViews(ctx, s.db, db.LessonFilter{SchoolID: l.SchoolID, LessonID: &l.ID})
	if err != nil {
		return models.LessonView{}, err
	}
	if len(views) == 0 {
		return models.LessonView{}, NotFoundf("Lesson with id %d does not exist", id)
	}
	return views[0], nil
}

func (s *Service) ListCorpuses(ctx context.Context, schoolID int64) ([]models.Corpus, error) {
	if _, err := getSchool(ctx, s.db, schoolID); err != nil {
		return nil, err
	}
	return nonNil(db.ListCorpuses(ctx, s.db, schoolID))
}

func (s *Service) ListCabinets(ctx context.Context, schoolID int64) ([]models.Cabinet, error) {
	if _, err := getSchool(ctx, s.db, schoolID); err != nil {
		return nil, err
	}
	return nonNil(db.ListCabinetsBySchool(ctx, s.db, schoolID))
}

func (s *Service) ListTeachers(ctx context.Context, schoolID int64) ([]models.Teacher, error) {
	if _, err := getSchool(ctx, s.db, schoolID); err != nil {
		return nil, err
	}
	return nonNil(db.ListTeachers(ctx, s.db, schoolID))
}

func (s *Service) ListSubclasses(ctx context.Context, schoolID int64) ([]models.Subclass, error) {
	if _, err := getSchool(ctx, s.db, schoolID); err != nil {
		return nil, err
	}
	return nonNil(db.ListSubclasses(ctx, s.db, schoolID))
}

func (s *Service) ListLessonNumbers(ctx context.Context, schoolID int64) ([]models.LessonNumber, error) {
	if _, err := getSchool(ctx, s.db, schoolID); err != nil {
		return nil, err
	}
	return nonNil(db.ListLessonNumbers(ctx, s.db, schoolID))
}

func (s *Service) ListLessons(ctx context.Context, schoolID int64) ([]models.LessonView, error) {
	if _, err := getSchool(ctx, s.db, schoolID); err != nil {
		return nil, err
	}
	return nonNil(db.ListLessonViews(ctx, s.db, db.LessonFilter{SchoolID: schoolID}))
}

// Parallels: различные параллели школы по возрастанию.
func (s *Service) Parallels(ctx context.Context, schoolID int64) ([]int, error) {
	subs, err := s.ListSubclasses(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return parallels(subs), nil
}

// Letters: буквы классов параллели.
func (s *Service) Letters(ctx context.Context, schoolID int64, level int) ([]string, error) {
	subs, err := s.ListSubclasses(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return letters(subs, level), nil
}

// Groups: дополнительные идентификаторы (группы) класса level+letter.
func (s *Service) Groups(ctx context.Context, schoolID int64, level int, identificator string) ([]string, error) {
	subs, err := s.ListSubclasses(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return groups(subs, level, identificator), nil
}

func parallels(subs []models.Subclass) []int {
	seen := map[int]struct{}{}
	out := []int{}
	for _, sc := range subs {
		if _, ok := seen[sc.EducationalLevel]; ok {
			continue
		}
		seen[sc.EducationalLevel] = struct{}{}
		out = append(out, sc.EducationalLevel)
	}
	sort.Ints(out)
	return out
}

func letters(subs []models.Subclass, level int) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, sc := range subs {
		if sc.EducationalLevel != level {
			continue
		}
		if _, ok := seen[sc.Identificator]; ok {
			continue
		}
		seen[sc.Identificator] = struct{}{}
		out = append(out, sc.Identificator)
	}
	sort.Strings(out)
	return out
}

func groups(subs []models.Subclass, level int, identificator string) []string {
	out := []string{}
	for _, sc := range subs {
		if sc.EducationalLevel == level && sc.Identificator == identificator {
			out = append(out, sc.AdditionalIdentificator)
		}
	}
	sort.Strings(out)
	return out
}

// SubclassByParams точный поиск класса по тройке параметров.
func (s *Service) SubclassByParams(ctx context.Context, schoolID int64, level int, identificator, additional string) (models.Subclass, error) {
	v, err := db.SubclassByParams(ctx, s.db, schoolID, level, identificator, additional)
	if err != nil {
		return models.Subclass{}, err
	}
	if v == nil {
		return models.Subclass{}, NotFoundf("Subclass %d%s%s does not exist in school %d", level, identificator, additional, schoolID)
	}
	return *v, nil
}

func (s *Service) ListTags(ctx context.Context) ([]models.Tag, error) {
	return nonNil(db.ListTags(ctx, s.db))
}

func (s *Service) TeachersByTag(ctx context.Context, schoolID int64, label string) ([]models.Teacher, error) {
	tag, err := getTag(ctx, s.db, label)
	if err != nil {
		return nil, err
	}
	return nonNil(db.ListTeachersByTag(ctx, s.db, schoolID, tag.ID))
}

func (s *Service) CabinetsByTag(ctx context.Context, schoolID int64, label string) ([]models.Cabinet, error) {
	tag, err := getTag(ctx, s.db, label)
	if err != nil {
		return nil, err
	}
	return nonNil(db.ListCabinetsByTag(ctx, s.db, schoolID, tag.ID))
}

// CanteenText текст столовой корпуса; NotFound, если он не задан.
func (s *Service) CanteenText(ctx context.Context, corpusID int64) (string, error) {
	c, err := getCorpus(ctx, s.db, corpusID)
	if err != nil {
		return "", err
	}
	if c.CanteenText == nil {
		return "", NotFoundf("Corpus with id %d has no canteen text", corpusID)
	}
	return *c.CanteenText, nil
}

// nonNil превращает nil-срез в пустой, чтобы в JSON уходил [].
func nonNil[T any](v []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = []T{}
	}
	return v, nil
}
