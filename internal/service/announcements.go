package service

import (
	"context"
	"errors"
	"sort"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/metrics"
	"github.com/Spok95/skedule/internal/models"
	"github.com/Spok95/skedule/internal/observability"
	"go.uber.org/zap"
)

// Filter: условие выбора получателей: TeacherFilter или SubclassFilter.
type Filter interface {
	isFilter()
}

// TeacherFilter точное имя учителя в школе.
type TeacherFilter struct {
	Name string
}

// SubclassFilter частичный набор параметров класса; пустой фильтр игнорируется.
type SubclassFilter struct {
	EducationalLevel        *int
	Identificator           *string
	AdditionalIdentificator *string
}

func (TeacherFilter) isFilter()  {}
func (SubclassFilter) isFilter() {}

type AnnouncementRequest struct {
	SchoolID          int64
	Title             string
	Text              string
	Filters           []Filter
	ResendToParents   bool
	SendOnlyToParents bool
	Silent            bool
}

type AnnouncementPreview struct {
	Teachers          []models.Teacher  `json:"teachers"`
	Subclasses        []models.Subclass `json:"subclasses"`
	TelegramIDs       []int64           `json:"telegram_ids"`
	SentToParents     bool              `json:"sent_to_parents"`
	SentOnlyToParents bool              `json:"sent_only_to_parents"`
	Silent            bool              `json:"silent"`
}

// targets: результат разбора фильтров.
type targets struct {
	teachers    []models.Teacher
	subclasses  []models.Subclass
	roleIDs     []int64
	telegramIDs []int64
}

func resolveTargets(ctx context.Context, q db.Querier, req AnnouncementRequest) (targets, error) {
	if _, err := getSchool(ctx, q, req.SchoolID); err != nil {
		return targets{}, err
	}

	teachers := map[int64]models.Teacher{}
	subclasses := map[int64]models.Subclass{}
	for _, f := range req.Filters {
		switch f := f.(type) {
		case TeacherFilter:
			t, err := getTeacherByName(ctx, q, req.SchoolID, f.Name)
			if err != nil {
				return targets{}, err
			}
			teachers[t.ID] = t
		case SubclassFilter:
			sf := db.SubclassFilter{
				EducationalLevel:        f.EducationalLevel,
				Identificator:           f.Identificator,
				AdditionalIdentificator: f.AdditionalIdentificator,
			}
			if sf.Empty() {
				continue
			}
			found, err := db.FilterSubclasses(ctx, q, req.SchoolID, sf)
			if err != nil {
				return targets{}, err
			}
			for _, sc := range found {
				subclasses[sc.ID] = sc
			}
		}
	}

	out := targets{teachers: []models.Teacher{}, subclasses: []models.Subclass{}}
	for _, t := range teachers {
		out.teachers = append(out.teachers, t)
	}
	for _, sc := range subclasses {
		out.subclasses = append(out.subclasses, sc)
	}
	sort.Slice(out.teachers, func(i, j int) bool { return out.teachers[i].ID < out.teachers[j].ID })
	sort.Slice(out.subclasses, func(i, j int) bool { return out.subclasses[i].ID < out.subclasses[j].ID })

	teacherIDs := make([]int64, 0, len(out.teachers))
	for _, t := range out.teachers {
		teacherIDs = append(teacherIDs, t.ID)
	}
	subclassIDs := make([]int64, 0, len(out.subclasses))
	for _, sc := range out.subclasses {
		subclassIDs = append(subclassIDs, sc.ID)
	}

	var all []db.RoleTarget
	if len(teacherIDs) > 0 {
		ts, err := db.TeacherRoleTargets(ctx, q, teacherIDs)
		if err != nil {
			return targets{}, err
		}
		all = append(all, ts...)
	}
	if len(subclassIDs) > 0 && !req.SendOnlyToParents {
		ts, err := db.StudentRoleTargets(ctx, q, subclassIDs)
		if err != nil {
			return targets{}, err
		}
		all = append(all, ts...)
	}
	if len(subclassIDs) > 0 && req.ResendToParents {
		ts, err := db.ParentRoleTargets(ctx, q, subclassIDs)
		if err != nil {
			return targets{}, err
		}
		all = append(all, ts...)
	}
	out.roleIDs, out.telegramIDs = splitTargets(all)
	return out, nil
}

// splitTargets раскладывает цели на уникальные отсортированные id ролей и telegram id.
func splitTargets(ts []db.RoleTarget) (roleIDs, telegramIDs []int64) {
	roles := make([]int64, 0, len(ts))
	tgs := make([]int64, 0, len(ts))
	for _, t := range ts {
		roles = append(roles, t.RoleID)
		tgs = append(tgs, t.TelegramID)
	}
	return uniqueIDs(roles), uniqueIDs(tgs)
}

func previewOf(req AnnouncementRequest, t targets) AnnouncementPreview {
	return AnnouncementPreview{
		Teachers:          t.teachers,
		Subclasses:        t.subclasses,
		TelegramIDs:       t.telegramIDs,
		SentToParents:     req.ResendToParents,
		SentOnlyToParents: req.SendOnlyToParents,
		Silent:            req.Silent,
	}
}

// PreviewAnnouncement показывает, кому уйдёт объявление, ничего не сохраняя.
func (s *Service) PreviewAnnouncement(ctx context.Context, req AnnouncementRequest) (AnnouncementPreview, error) {
	t, err := resolveTargets(ctx, s.db, req)
	if err != nil {
		return AnnouncementPreview{}, err
	}
	return previewOf(req, t), nil
}

// CreateAnnouncement публикует текст, сохраняет объявление в статусе pending,
// после коммита рассылает ссылку и фиксирует итог доставки.
func (s *Service) CreateAnnouncement(ctx context.Context, req AnnouncementRequest) (AnnouncementPreview, error) {
	t, err := resolveTargets(ctx, s.db, req)
	if err != nil {
		return AnnouncementPreview{}, err
	}
	link, err := s.publish(ctx, req.Title, req.Text)
	if err != nil {
		return AnnouncementPreview{}, err
	}
	if err := s.saveAndDeliver(ctx, link, &req.Title, t.roleIDs, t.telegramIDs, req.Silent); err != nil {
		return AnnouncementPreview{}, err
	}
	return previewOf(req, t), nil
}

// BroadcastAnnouncement публикует текст и отправляет ссылку всем аккаунтам.
func (s *Service) BroadcastAnnouncement(ctx context.Context, title, text string, silent bool) ([]int64, error) {
	link, err := s.publish(ctx, title, text)
	if err != nil {
		return nil, err
	}
	ts, err := db.AllRoleTargets(ctx, s.db)
	if err != nil {
		return nil, err
	}
	roleIDs, _ := splitTargets(ts)
	ids, err := s.ListTelegramIDs(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.saveAndDeliver(ctx, link, &title, roleIDs, ids, silent); err != nil {
		return nil, err
	}
	return ids, nil
}

// BroadcastText отправляет текст всем аккаунтам без публикации и истории.
func (s *Service) BroadcastText(ctx context.Context, text string, silent bool) ([]int64, error) {
	ids, err := s.ListTelegramIDs(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.deliver(ctx, text, ids, silent); err != nil {
		return nil, err
	}
	metrics.Announcement("delivered")
	return ids, nil
}

// History последние доставленные объявления роли, новые первыми.
func (s *Service) History(ctx context.Context, roleID int64) ([]models.HistoryEntry, error) {
	if _, err := getRole(ctx, s.db, roleID); err != nil {
		return nil, err
	}
	return nonNil(db.RoleHistory(ctx, s.db, roleID, s.limits.MaxHistory))
}

func (s *Service) publish(ctx context.Context, title, text string) (string, error) {
	if s.publisher == nil {
		return "", &Error{Kind: KindDownstream, Msg: "Can not publish your announcement", Err: errors.New("publisher is not configured")}
	}
	link, err := s.publisher.Publish(ctx, title, text)
	if err != nil {
		var bad InvalidContent
		if errors.As(err, &bad) && bad.InvalidContent() {
			return "", &Error{Kind: KindBadContent, Msg: "Invalid HTML: " + err.Error(), Err: err}
		}
		s.logger(ctx).Error("publish announcement", zap.Error(err))
		return "", &Error{Kind: KindDownstream, Msg: "Can not publish your announcement", Err: err}
	}
	s.logger(ctx).Info("announcement published", zap.String("link", link))
	return link, nil
}

// saveAndDeliver: запись pending в транзакции, рассылка после коммита,
// затем delivered или failed.
func (s *Service) saveAndDeliver(ctx context.Context, link string, title *string, roleIDs, telegramIDs []int64, silent bool) error {
	var id int64
	err := s.tx(ctx, func(q db.Querier) error {
		var err error
		id, err = db.CreateAnnouncement(ctx, q, link, title, roleIDs)
		return err
	})
	if err != nil {
		return err
	}

	status := models.AnnouncementDelivered
	derr := s.deliver(ctx, link, telegramIDs, silent)
	if derr != nil {
		status = models.AnnouncementFailed
	}
	if err := db.SetAnnouncementStatus(ctx, s.db, id, status); err != nil {
		s.logger(ctx).Error("set announcement status", zap.Int64("announcement_id", id), zap.Error(err))
		observability.CaptureErr(err)
	}
	metrics.Announcement(string(status))
	return derr
}

// deliver пропускает пустой список получателей.
func (s *Service) deliver(ctx context.Context, text string, telegramIDs []int64, silent bool) error {
	if len(telegramIDs) == 0 {
		return nil
	}
	if s.notifier == nil {
		return &Error{Kind: KindDownstream, Msg: "Can not post your announcement", Err: errors.New("notifier is not configured")}
	}
	if err := s.notifier.Deliver(ctx, text, telegramIDs, silent); err != nil {
		s.logger(ctx).Error("deliver announcement", zap.Int("recipients", len(telegramIDs)), zap.Error(err))
		return &Error{Kind: KindDownstream, Msg: "Can not post your announcement", Err: err}
	}
	return nil
}
