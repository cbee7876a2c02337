package service

import (
	"context"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

// Поиск по id: отсутствие всегда NotFound, дальше код работает с непустыми значениями.

func getSchool(ctx context.Context, q db.Querier, id int64) (models.School, error) {
	v, err := db.GetSchool(ctx, q, id)
	if err != nil {
		return models.School{}, err
	}
	if v == nil {
		return models.School{}, NotFoundf("School with id %d does not exist", id)
	}
	return *v, nil
}

func getCorpus(ctx context.Context, q db.Querier, id int64) (models.Corpus, error) {
	v, err := db.GetCorpus(ctx, q, id)
	if err != nil {
		return models.Corpus{}, err
	}
	if v == nil {
		return models.Corpus{}, NotFoundf("Corpus with id %d does not exist", id)
	}
	return *v, nil
}

func getCabinet(ctx context.Context, q db.Querier, id int64) (models.Cabinet, error) {
	v, err := db.GetCabinet(ctx, q, id)
	if err != nil {
		return models.Cabinet{}, err
	}
	if v == nil {
		return models.Cabinet{}, NotFoundf("Cabinet with id %d does not exist", id)
	}
	return *v, nil
}

func getTeacher(ctx context.Context, q db.Querier, id int64) (models.Teacher, error) {
	v, err := db.GetTeacher(ctx, q, id)
	if err != nil {
		return models.Teacher{}, err
	}
	if v == nil {
		return models.Teacher{}, NotFoundf("Teacher with id %d does not exist", id)
	}
	return *v, nil
}

func getTeacherByName(ctx context.Context, q db.Querier, schoolID int64, name string) (models.Teacher, error) {
	v, err := db.TeacherByName(ctx, q, schoolID, name)
	if err != nil {
		return models.Teacher{}, err
	}
	if v == nil {
		return models.Teacher{}, NotFoundf("Teacher with name %q does not exist in school %d", name, schoolID)
	}
	return *v, nil
}

func getSubclass(ctx context.Context, q db.Querier, id int64) (models.Subclass, error) {
	v, err := db.GetSubclass(ctx, q, id)
	if err != nil {
		return models.Subclass{}, err
	}
	if v == nil {
		return models.Subclass{}, NotFoundf("Subclass with id %d does not exist", id)
	}
	return *v, nil
}

func getLessonNumber(ctx context.Context, q db.Querier, id int64) (models.LessonNumber, error) {
	v, err := db.GetLessonNumber(ctx, q, id)
	if err != nil {
		return models.LessonNumber{}, err
	}
	if v == nil {
		return models.LessonNumber{}, NotFoundf("Lesson number with id %d does not exist", id)
	}
	return *v, nil
}

func getLesson(ctx context.Context, q db.Querier, id int64) (models.Lesson, error) {
	v, err := db.GetLesson(ctx, q, id)
	if err != nil {
		return models.Lesson{}, err
	}
	if v == nil {
		return models.Lesson{}, NotFoundf("Lesson with id %d does not exist", id)
	}
	return *v, nil
}

func getRole(ctx context.Context, q db.Querier, id int64) (models.Role, error) {
	v, err := db.GetRole(ctx, q, id)
	if err != nil {
		return models.Role{}, err
	}
	if v == nil {
		return models.Role{}, NotFoundf("Role with id %d does not exist", id)
	}
	return *v, nil
}

func getTag(ctx context.Context, q db.Querier, label string) (models.Tag, error) {
	v, err := db.TagByLabel(ctx, q, label)
	if err != nil {
		return models.Tag{}, err
	}
	if v == nil {
		return models.Tag{}, NotFoundf("Tag %q does not exist", label)
	}
	return *v, nil
}

// lockAccount находит аккаунт и блокирует его строку до конца транзакции.
func lockAccount(ctx context.Context, q db.Querier, telegramID int64) (models.Account, error) {
	v, err := db.LockAccount(ctx, q, telegramID)
	if err != nil {
		return models.Account{}, err
	}
	if v == nil {
		return models.Account{}, NotFoundf("User with telegram id %d does not exist", telegramID)
	}
	return *v, nil
}

func getAccount(ctx context.Context, q db.Querier, telegramID int64) (models.Account, error) {
	v, err := db.GetAccountByTelegramID(ctx, q, telegramID)
	if err != nil {
		return models.Account{}, err
	}
	if v == nil {
		return models.Account{}, NotFoundf("User with telegram id %d does not exist", telegramID)
	}
	return *v, nil
}

func checkUniqueAccount(ctx context.Context, q db.Querier, telegramID int64) error {
	v, err := db.GetAccountByTelegramID(ctx, q, telegramID)
	if err != nil {
		return err
	}
	if v != nil {
		return Conflictf("User with telegram id %d already exists", telegramID)
	}
	return nil
}

// sameSchool проверяет, что подменяемая сущность из той же школы.
func sameSchool(what string, got, want int64) error {
	if got != want {
		return Conflictf("%s is in another school", what)
	}
	return nil
}
