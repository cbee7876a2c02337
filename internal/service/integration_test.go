//go:build testutil
// +build testutil

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/skedule/internal/models"
	"github.com/Spok95/skedule/internal/testutil/testdb"
)

var testSvc *Service

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]int64
}

func (n *recordingNotifier) Deliver(_ context.Context, _ string, ids []int64, _ bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, append([]int64(nil), ids...))
	return nil
}

type failingNotifier struct{}

func (failingNotifier) Deliver(context.Context, string, []int64, bool) error {
	return errors.New("transmitter: http 502")
}

type staticPublisher struct{}

func (staticPublisher) Publish(_ context.Context, title, _ string) (string, error) {
	return "https://telegra.ph/" + title, nil
}

func TestMain(m *testing.M) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "testdb:", err)
		os.Exit(1)
	}
	testSvc = New(h.DB, Options{Notifier: &recordingNotifier{}, Publisher: staticPublisher{}})
	code := m.Run()
	h.Close()
	os.Exit(code)
}

var seq struct {
	sync.Mutex
	n int64
}

// uniq: суффикс и telegram id, не пересекающиеся между тестами.
func uniq() int64 {
	seq.Lock()
	defer seq.Unlock()
	seq.n++
	return time.Now().UnixNano()%1_000_000_000*100 + seq.n
}

type fixture struct {
	school   models.School
	corpus   models.Corpus
	teacher  models.Teacher
	subclass models.Subclass
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	n := uniq()
	sc, err := testSvc.CreateSchool(ctx, fmt.Sprintf("Школа %d", n))
	require.NoError(t, err)
	corp, err := testSvc.CreateCorpus(ctx, CorpusInput{SchoolID: sc.ID, Name: "Главный", Address: "ул. Ленина, 1"})
	require.NoError(t, err)
	teacher, err := testSvc.CreateTeacher(ctx, TeacherInput{SchoolID: sc.ID, Name: "Иванова И.И.", Tags: []string{"физика"}})
	require.NoError(t, err)
	sub, err := testSvc.CreateSubclass(ctx, SubclassInput{SchoolID: sc.ID, EducationalLevel: 10, Identificator: "А"})
	require.NoError(t, err)
	return fixture{school: sc, corpus: corp, teacher: teacher, subclass: sub}
}

func mainRoles(v AccountView) int {
	n := 0
	for _, r := range v.Roles {
		if r.IsMainRole {
			n++
		}
	}
	return n
}

func TestRoleLifecycle_BasicAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tid := uniq()

	v, err := testSvc.Register(ctx, tid, RoleRequest{Type: models.RoleTeacher, TeacherID: f.teacher.ID})
	require.NoError(t, err)
	require.Len(t, v.Roles, 1)
	assert.Equal(t, "teacher", v.Roles[0].RoleType)
	assert.True(t, v.Roles[0].IsMainRole)
	require.NotNil(t, v.Roles[0].Teacher)
	assert.Equal(t, f.teacher.ID, v.Roles[0].Teacher.Teacher.ID)

	_, err = testSvc.Register(ctx, tid, RoleRequest{Type: models.RoleParent})
	assert.True(t, IsKind(err, KindConflict), "повторная регистрация: %v", err)

	v, err = testSvc.AddRole(ctx, tid, RoleRequest{Type: models.RoleParent})
	require.NoError(t, err)
	require.Len(t, v.Roles, 2)
	assert.Equal(t, 1, mainRoles(v))
	for _, r := range v.Roles {
		assert.Equal(t, r.RoleType == "teacher", r.IsMainRole, "главная роль не меняется при add")
	}

	_, err = testSvc.AddRole(ctx, tid, RoleRequest{Type: models.RoleParent})
	assert.True(t, IsKind(err, KindConflict), "роль того же типа: %v", err)

	v, err = testSvc.ChangeRole(ctx, tid, RoleRequest{Type: models.RoleParent})
	require.NoError(t, err)
	require.Len(t, v.Roles, 1)
	assert.Equal(t, "parent", v.Roles[0].RoleType)
	assert.True(t, v.Roles[0].IsMainRole)

	// каталог учителей не затронут
	teacher, err := testSvc.Teacher(ctx, f.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, f.teacher.Name, teacher.Name)

	v, err = testSvc.ChangeRole(ctx, tid, RoleRequest{Type: models.RoleStudent, SubclassID: f.subclass.ID})
	require.NoError(t, err)
	require.Len(t, v.Roles, 1)
	assert.Equal(t, "student", v.Roles[0].RoleType)
}

func TestChangeRole_PremiumKeepsRoles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tid := uniq()

	_, err := testSvc.Register(ctx, tid, RoleRequest{Type: models.RoleTeacher, TeacherID: f.teacher.ID})
	require.NoError(t, err)
	until := time.Now().Add(30 * 24 * time.Hour)
	_, err = testSvc.SetPremium(ctx, tid, PremiumUpdate{Status: 1, Until: &until})
	require.NoError(t, err)

	v, err := testSvc.ChangeRole(ctx, tid, RoleRequest{Type: models.RoleParent})
	require.NoError(t, err)
	require.Len(t, v.Roles, 2)
	assert.Equal(t, 1, mainRoles(v))

	v, err = testSvc.ChangeRole(ctx, tid, RoleRequest{Type: models.RoleTeacher, TeacherID: f.teacher.ID})
	require.NoError(t, err)
	require.Len(t, v.Roles, 2)
	for _, r := range v.Roles {
		assert.Equal(t, r.RoleType == "teacher", r.IsMainRole)
	}
}

func TestAddChild_Cap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tid := uniq()

	_, err := testSvc.AddChild(ctx, tid, f.subclass.ID)
	assert.True(t, IsKind(err, KindNotFound), "нет аккаунта: %v", err)

	_, err = testSvc.Register(ctx, tid, RoleRequest{Type: models.RoleTeacher, TeacherID: f.teacher.ID})
	require.NoError(t, err)
	_, err = testSvc.AddChild(ctx, tid, f.subclass.ID)
	assert.True(t, IsKind(err, KindConflict), "нет роли родителя: %v", err)

	_, err = testSvc.AddRole(ctx, tid, RoleRequest{Type: models.RoleParent})
	require.NoError(t, err)
	first, err := testSvc.AddChild(ctx, tid, f.subclass.ID)
	require.NoError(t, err)
	assert.Equal(t, f.subclass.ID, first.Subclass.ID)

	_, err = testSvc.AddChild(ctx, tid, f.subclass.ID)
	assert.True(t, IsKind(err, KindConflict), "лимит базового статуса: %v", err)

	_, err = testSvc.SetPremium(ctx, tid, PremiumUpdate{Status: 1})
	require.NoError(t, err)
	_, err = testSvc.AddChild(ctx, tid, f.subclass.ID)
	require.NoError(t, err)

	v, err := testSvc.GetAccount(ctx, tid)
	require.NoError(t, err)
	assert.Equal(t, 1, mainRoles(v))

	require.NoError(t, testSvc.RemoveChild(ctx, tid, first.ChildID))
	err = testSvc.RemoveChild(ctx, tid, first.ChildID)
	assert.True(t, IsKind(err, KindNotFound), "повторное удаление: %v", err)
}

func TestCorpusUniquenessPerSchool(t *testing.T) {
	ctx := context.Background()
	a := newFixture(t)
	b := newFixture(t)

	_, err := testSvc.CreateCorpus(ctx, CorpusInput{SchoolID: a.school.ID, Name: a.corpus.Name, Address: "другой адрес"})
	assert.True(t, IsKind(err, KindConflict), "имя: %v", err)
	_, err = testSvc.CreateCorpus(ctx, CorpusInput{SchoolID: a.school.ID, Name: "Второй", Address: a.corpus.Address})
	assert.True(t, IsKind(err, KindConflict), "адрес: %v", err)

	// вторая школа создана newFixture с тем же именем и адресом корпуса
	assert.Equal(t, a.corpus.Name, b.corpus.Name)
	assert.Equal(t, a.corpus.Address, b.corpus.Address)
}

func TestCabinetNamePerCorpus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other, err := testSvc.CreateCorpus(ctx, CorpusInput{SchoolID: f.school.ID, Name: "Второй", Address: "ул. Мира, 2"})
	require.NoError(t, err)

	_, err = testSvc.CreateCabinet(ctx, CabinetInput{CorpusID: f.corpus.ID, Floor: 3, Name: "317"})
	require.NoError(t, err)
	_, err = testSvc.CreateCabinet(ctx, CabinetInput{CorpusID: f.corpus.ID, Floor: 3, Name: "317"})
	assert.True(t, IsKind(err, KindConflict), "дубль в корпусе: %v", err)
	cab, err := testSvc.CreateCabinet(ctx, CabinetInput{CorpusID: other.ID, Floor: 3, Name: "317", Tags: []string{"информатика"}})
	require.NoError(t, err)
	assert.Equal(t, f.school.ID, cab.SchoolID)
	assert.Equal(t, []string{"информатика"}, cab.Tags)
}

func TestLessonNumberPartialUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ln, err := testSvc.CreateLessonNumber(ctx, LessonNumberInput{SchoolID: f.school.ID, Number: 1, TimeStart: "8:00", TimeEnd: "08:45"})
	require.NoError(t, err)
	assert.Equal(t, "08:00", ln.TimeStart)

	start := "09:00"
	_, err = testSvc.UpdateLessonNumber(ctx, ln.ID, LessonNumberUpdate{TimeStart: &start})
	assert.True(t, IsKind(err, KindConflict), "09:00 >= 08:45: %v", err)

	end := "09:45"
	got, err := testSvc.UpdateLessonNumber(ctx, ln.ID, LessonNumberUpdate{TimeStart: &start, TimeEnd: &end})
	require.NoError(t, err)
	assert.Equal(t, "09:00", got.TimeStart)
	assert.Equal(t, "09:45", got.TimeEnd)

	_, err = testSvc.CreateLessonNumber(ctx, LessonNumberInput{SchoolID: f.school.ID, Number: 1, TimeStart: "10:00", TimeEnd: "10:45"})
	assert.True(t, IsKind(err, KindConflict), "номер занят: %v", err)
}

func TestFreeCabinets_ExcludesOccupied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var cabs []models.Cabinet
	for _, name := range []string{"42", "43", "44"} {
		c, err := testSvc.CreateCabinet(ctx, CabinetInput{CorpusID: f.corpus.ID, Floor: 4, Name: name})
		require.NoError(t, err)
		cabs = append(cabs, c)
	}
	ln, err := testSvc.CreateLessonNumber(ctx, LessonNumberInput{SchoolID: f.school.ID, Number: 3, TimeStart: "10:00", TimeEnd: "10:45"})
	require.NoError(t, err)
	_, err = testSvc.CreateLesson(ctx, LessonInput{
		CabinetID:      cabs[0].ID,
		TeacherID:      f.teacher.ID,
		LessonNumberID: ln.ID,
		DayOfWeek:      2,
		Subject:        "Физика",
		SubclassIDs:    []int64{f.subclass.ID},
	})
	require.NoError(t, err)

	number := 3
	free, err := testSvc.FreeCabinets(ctx, f.corpus.ID, 2, &number, nil)
	require.NoError(t, err)
	var names []string
	for _, c := range free {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"43", "44"}, names)

	// в другой день занятых нет
	free, err = testSvc.FreeCabinets(ctx, f.corpus.ID, 3, &number, nil)
	require.NoError(t, err)
	assert.Len(t, free, 3)

	// урок виден в расписании учителя на вторник
	day, err := testSvc.LessonsForDay(ctx, f.school.ID, 2, LessonOwner{TeacherID: &f.teacher.ID})
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "42", day[0].Cabinet.Name)
}

func TestLessonRefsMustShareSchool(t *testing.T) {
	ctx := context.Background()
	a := newFixture(t)
	b := newFixture(t)

	cab, err := testSvc.CreateCabinet(ctx, CabinetInput{CorpusID: a.corpus.ID, Floor: 1, Name: "101"})
	require.NoError(t, err)
	ln, err := testSvc.CreateLessonNumber(ctx, LessonNumberInput{SchoolID: a.school.ID, Number: 1, TimeStart: "08:00", TimeEnd: "08:45"})
	require.NoError(t, err)

	_, err = testSvc.CreateLesson(ctx, LessonInput{
		CabinetID:      cab.ID,
		TeacherID:      b.teacher.ID,
		LessonNumberID: ln.ID,
		DayOfWeek:      1,
		Subject:        "Химия",
		SubclassIDs:    []int64{a.subclass.ID},
	})
	assert.True(t, IsKind(err, KindConflict), "учитель из другой школы: %v", err)
}

func TestAnnouncementTargeting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tid := uniq()

	v, err := testSvc.Register(ctx, tid, RoleRequest{Type: models.RoleTeacher, TeacherID: f.teacher.ID})
	require.NoError(t, err)

	req := AnnouncementRequest{
		SchoolID: f.school.ID,
		Title:    fmt.Sprintf("t%d", tid),
		Text:     "<p>Собрание в пятницу</p>",
		Filters:  []Filter{TeacherFilter{Name: f.teacher.Name}},
	}
	prev, err := testSvc.PreviewAnnouncement(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, prev.TelegramIDs, tid)

	_, err = testSvc.CreateAnnouncement(ctx, req)
	require.NoError(t, err)

	hist, err := testSvc.History(ctx, v.Roles[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, hist)
	assert.Equal(t, "https://telegra.ph/"+req.Title, hist[0].Link)
}

func TestChangeRole_PromoteChecksRefs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tid := uniq()

	_, err := testSvc.Register(ctx, tid, RoleRequest{Type: models.RoleTeacher, TeacherID: f.teacher.ID})
	require.NoError(t, err)
	_, err = testSvc.SetPremium(ctx, tid, PremiumUpdate{Status: 1})
	require.NoError(t, err)
	_, err = testSvc.AddRole(ctx, tid, RoleRequest{Type: models.RoleParent})
	require.NoError(t, err)

	// роль учителя уже есть, но ссылка на несуществующего учителя не принимается
	_, err = testSvc.ChangeRole(ctx, tid, RoleRequest{Type: models.RoleTeacher, TeacherID: f.teacher.ID + 1_000_000})
	assert.True(t, IsKind(err, KindNotFound), "несуществующий учитель: %v", err)

	v, err := testSvc.GetAccount(ctx, tid)
	require.NoError(t, err)
	require.Len(t, v.Roles, 2)
	for _, r := range v.Roles {
		assert.Equal(t, r.RoleType == "teacher", r.IsMainRole, "главная роль не изменилась")
	}
}

func TestMissingMainRole_IsInvariant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tid := uniq()

	v, err := testSvc.Register(ctx, tid, RoleRequest{Type: models.RoleTeacher, TeacherID: f.teacher.ID})
	require.NoError(t, err)
	_, err = testSvc.db.ExecContext(ctx, `UPDATE roles SET is_main_role = FALSE WHERE id = $1`, v.Roles[0].ID)
	require.NoError(t, err)

	_, err = testSvc.AddRole(ctx, tid, RoleRequest{Type: models.RoleParent})
	assert.True(t, IsKind(err, KindInvariant), "add без главной роли: %v", err)
	_, err = testSvc.ChangeRole(ctx, tid, RoleRequest{Type: models.RoleParent})
	assert.True(t, IsKind(err, KindInvariant), "change без главной роли: %v", err)

	// ничего не исправлено молча
	v, err = testSvc.GetAccount(ctx, tid)
	require.NoError(t, err)
	require.Len(t, v.Roles, 1)
	assert.Zero(t, mainRoles(v))
}

func TestAnnouncementTargeting_SubclassFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b10, err := testSvc.CreateSubclass(ctx, SubclassInput{SchoolID: f.school.ID, EducationalLevel: 10, Identificator: "Б"})
	require.NoError(t, err)
	a11, err := testSvc.CreateSubclass(ctx, SubclassInput{SchoolID: f.school.ID, EducationalLevel: 11, Identificator: "А"})
	require.NoError(t, err)

	student10A, student10B, student11A, parent := uniq(), uniq(), uniq(), uniq()
	for tid, sub := range map[int64]int64{student10A: f.subclass.ID, student10B: b10.ID, student11A: a11.ID} {
		_, err := testSvc.Register(ctx, tid, RoleRequest{Type: models.RoleStudent, SubclassID: sub})
		require.NoError(t, err)
	}
	_, err = testSvc.Register(ctx, parent, RoleRequest{Type: models.RoleParent})
	require.NoError(t, err)
	_, err = testSvc.AddChild(ctx, parent, b10.ID)
	require.NoError(t, err)

	level := 10
	letter := "Б"
	preview := func(req AnnouncementRequest) AnnouncementPreview {
		t.Helper()
		req.SchoolID = f.school.ID
		req.Title, req.Text = "t", "x"
		p, err := testSvc.PreviewAnnouncement(ctx, req)
		require.NoError(t, err)
		return p
	}

	p := preview(AnnouncementRequest{Filters: []Filter{SubclassFilter{EducationalLevel: &level}}})
	assert.ElementsMatch(t, []int64{student10A, student10B}, p.TelegramIDs, "параллель без буквы")
	assert.Len(t, p.Subclasses, 2)

	p = preview(AnnouncementRequest{Filters: []Filter{SubclassFilter{EducationalLevel: &level, Identificator: &letter}}})
	assert.Equal(t, []int64{student10B}, p.TelegramIDs)

	p = preview(AnnouncementRequest{Filters: []Filter{SubclassFilter{}}})
	assert.Empty(t, p.TelegramIDs, "пустой фильтр игнорируется")
	assert.Empty(t, p.Subclasses)

	p = preview(AnnouncementRequest{
		Filters:         []Filter{SubclassFilter{EducationalLevel: &level, Identificator: &letter}},
		ResendToParents: true,
	})
	assert.ElementsMatch(t, []int64{student10B, parent}, p.TelegramIDs, "родитель ребёнка из 10Б")

	p = preview(AnnouncementRequest{
		Filters:           []Filter{SubclassFilter{EducationalLevel: &level}},
		ResendToParents:   true,
		SendOnlyToParents: true,
	})
	assert.Equal(t, []int64{parent}, p.TelegramIDs, "только родители")
}

func TestCreateAnnouncement_DeliveryFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tid := uniq()

	v, err := testSvc.Register(ctx, tid, RoleRequest{Type: models.RoleTeacher, TeacherID: f.teacher.ID})
	require.NoError(t, err)
	roleID := v.Roles[0].ID

	broken := New(testSvc.db, Options{Notifier: failingNotifier{}, Publisher: staticPublisher{}})
	req := AnnouncementRequest{
		SchoolID: f.school.ID,
		Title:    fmt.Sprintf("fail%d", tid),
		Text:     "<p>Отмена занятий</p>",
		Filters:  []Filter{TeacherFilter{Name: f.teacher.Name}},
	}
	_, err = broken.CreateAnnouncement(ctx, req)
	assert.True(t, IsKind(err, KindDownstream), "ошибка доставки: %v", err)

	var status string
	require.NoError(t, testSvc.db.QueryRowContext(ctx,
		`SELECT status FROM announcements WHERE link = $1`, "https://telegra.ph/"+req.Title).Scan(&status))
	assert.Equal(t, string(models.AnnouncementFailed), status)

	hist, err := testSvc.History(ctx, roleID)
	require.NoError(t, err)
	assert.Empty(t, hist, "недоставленное объявление не попадает в историю")

	req.Title = fmt.Sprintf("ok%d", tid)
	_, err = testSvc.CreateAnnouncement(ctx, req)
	require.NoError(t, err)
	hist, err = testSvc.History(ctx, roleID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "https://telegra.ph/"+req.Title, hist[0].Link)
}
