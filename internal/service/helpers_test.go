package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

func TestFreeOf(t *testing.T) {
	all := []models.Cabinet{{ID: 42, Name: "42"}, {ID: 7, Name: "7"}, {ID: 317, Name: "317"}}
	got := freeOf(all, []int64{42, 42, 1000})
	if len(got) != 2 || got[0].ID != 7 || got[1].ID != 317 {
		t.Fatalf("свободные: %+v", got)
	}
	if got := freeOf(nil, []int64{1}); got == nil || len(got) != 0 {
		t.Fatalf("пустой корпус: %#v", got)
	}
}

func TestGroupByDay(t *testing.T) {
	views := []models.LessonView{
		{ID: 1, DayOfWeek: 2},
		{ID: 2, DayOfWeek: 4},
		{ID: 3, DayOfWeek: 2},
		{ID: 4, DayOfWeek: 7},
	}
	got := groupByDay(views, 2, 4)
	if len(got) != 3 {
		t.Fatalf("ожидали 3 дня, получили %d", len(got))
	}
	if got[0].DayOfWeek != 2 || len(got[0].Lessons) != 2 {
		t.Fatalf("вторник: %+v", got[0])
	}
	if got[1].DayOfWeek != 3 || got[1].Lessons == nil || len(got[1].Lessons) != 0 {
		t.Fatalf("среда должна быть пустой, но не nil: %+v", got[1])
	}
	if got[2].DayOfWeek != 4 || len(got[2].Lessons) != 1 || got[2].Lessons[0].ID != 2 {
		t.Fatalf("четверг: %+v", got[2])
	}
}

func TestSubclassParams(t *testing.T) {
	subs := []models.Subclass{
		{EducationalLevel: 10, Identificator: "Б", AdditionalIdentificator: "2"},
		{EducationalLevel: 5, Identificator: "А"},
		{EducationalLevel: 10, Identificator: "А", AdditionalIdentificator: "1"},
		{EducationalLevel: 10, Identificator: "Б", AdditionalIdentificator: "1"},
	}
	if got := parallels(subs); !reflect.DeepEqual(got, []int{5, 10}) {
		t.Fatalf("parallels = %v", got)
	}
	if got := letters(subs, 10); !reflect.DeepEqual(got, []string{"А", "Б"}) {
		t.Fatalf("letters = %v", got)
	}
	if got := groups(subs, 10, "Б"); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("groups = %v", got)
	}
	if got := letters(subs, 11); got == nil || len(got) != 0 {
		t.Fatalf("нет параллели: %#v", got)
	}
}

func TestUniqueIDsAndLabels(t *testing.T) {
	if got := uniqueIDs([]int64{5, 1, 5, 3, 1}); !reflect.DeepEqual(got, []int64{1, 3, 5}) {
		t.Fatalf("uniqueIDs = %v", got)
	}
	if got := uniqueLabels([]string{"физика", "лаборатория", "физика"}); !reflect.DeepEqual(got, []string{"физика", "лаборатория"}) {
		t.Fatalf("uniqueLabels = %v", got)
	}
}

func TestSplitTargets(t *testing.T) {
	roles, tgs := splitTargets([]db.RoleTarget{
		{RoleID: 3, TelegramID: 555},
		{RoleID: 1, TelegramID: 555},
		{RoleID: 2, TelegramID: 7},
	})
	if !reflect.DeepEqual(roles, []int64{1, 2, 3}) {
		t.Fatalf("roles = %v", roles)
	}
	if !reflect.DeepEqual(tgs, []int64{7, 555}) {
		t.Fatalf("telegram ids = %v", tgs)
	}
}

func TestLessonOwnerCheck(t *testing.T) {
	id := int64(1)
	if err := (LessonOwner{TeacherID: &id}).check(); err != nil {
		t.Fatal(err)
	}
	if err := (LessonOwner{SubclassID: &id}).check(); err != nil {
		t.Fatal(err)
	}
	for _, o := range []LessonOwner{{}, {TeacherID: &id, SubclassID: &id}} {
		if err := o.check(); !IsKind(err, KindValidation) {
			t.Fatalf("%+v: ожидали Validation, получили %v", o, err)
		}
	}
}

func TestStoreErr(t *testing.T) {
	if storeErr(nil) != nil {
		t.Fatal("nil")
	}

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "schools_name_key"}
	err := storeErr(fmt.Errorf("insert school: %w", pgErr))
	if !IsKind(err, KindConflict) {
		t.Fatalf("ожидали Conflict, получили %v", err)
	}
	var se *Error
	if !errors.As(err, &se) || se.Msg != "School with this name already exists" {
		t.Fatalf("сообщение: %v", err)
	}
	if !errors.Is(err, pgErr) {
		t.Fatal("исходная ошибка должна оставаться в цепочке")
	}

	unknown := storeErr(&pgconn.PgError{Code: "23505", ConstraintName: "something_key"})
	if !IsKind(unknown, KindConflict) {
		t.Fatalf("неизвестное ограничение: %v", unknown)
	}

	rangeErr := storeErr(&pgconn.PgError{Code: "23514", ConstraintName: "cabinets_floor_check"})
	if !IsKind(rangeErr, KindValidation) {
		t.Fatalf("CHECK на диапазон: ожидали Validation, получили %v", rangeErr)
	}
	if order := storeErr(&pgconn.PgError{Code: "23514", ConstraintName: "lesson_numbers_time_order"}); !IsKind(order, KindConflict) {
		t.Fatalf("порядок времени остается Conflict: %v", order)
	}
	if long := storeErr(&pgconn.PgError{Code: "22001"}); !IsKind(long, KindValidation) {
		t.Fatalf("длинная строка: ожидали Validation, получили %v", long)
	}

	nf := NotFoundf("School with id %d does not exist", 1)
	if storeErr(nf) != nf {
		t.Fatal("доменная ошибка проходит как есть")
	}
	plain := errors.New("boom")
	if storeErr(plain) != plain {
		t.Fatal("прочие ошибки не трогаем")
	}
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Conflictf("Cabinet with name %q already exists in corpus %d", "317", 1))
	k, ok := KindOf(err)
	if !ok || k != KindConflict || k.String() != "conflict" {
		t.Fatalf("KindOf = %v %v", k, ok)
	}
	if _, ok := KindOf(errors.New("x")); ok {
		t.Fatal("обычная ошибка без вида")
	}
	e := &Error{Kind: KindDownstream, Msg: "Can not post your announcement", Err: errors.New("http 502")}
	if e.Error() != "Can not post your announcement: http 502" {
		t.Fatalf("Error() = %q", e.Error())
	}
}

// Проверки аргументов срабатывают до обращения к БД.
func TestService_ValidatesBeforeStore(t *testing.T) {
	s := New(nil, Options{})
	ctx := context.Background()
	one := int64(1)

	checks := map[string]error{}
	_, checks["free cabinets bad day"] = s.FreeCabinets(ctx, 1, 0, nil, nil)
	_, checks["lesson bad day"] = s.CreateLesson(ctx, LessonInput{DayOfWeek: 8})
	_, checks["lessons without owner"] = s.LessonsForDay(ctx, 1, 1, LessonOwner{})
	_, checks["range reversed"] = s.LessonsForRange(ctx, 1, 5, 2, LessonOwner{TeacherID: &one})
	_, checks["range bad end"] = s.LessonsForRange(ctx, 1, 1, 9, LessonOwner{TeacherID: &one})
	_, checks["certain without owner"] = s.CertainLesson(ctx, 1, 1, 1, LessonOwner{})
	_, checks["negative premium"] = s.SetPremium(ctx, 555, PremiumUpdate{Status: -1})
	_, checks["too many cabinet tags"] = s.CreateCabinet(ctx, CabinetInput{Tags: make([]string, maxTags+1)})
	_, checks["bad lesson number time"] = s.CreateLessonNumber(ctx, LessonNumberInput{TimeStart: "25:00", TimeEnd: "26:00"})

	for name, err := range checks {
		if !IsKind(err, KindValidation) {
			t.Errorf("%s: ожидали Validation, получили %v", name, err)
		}
	}
}
