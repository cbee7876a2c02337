package service

import (
	"context"
	"time"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
	"go.uber.org/zap"
)

type AccountView struct {
	TelegramID        int64      `json:"telegram_id"`
	PremiumStatus     int        `json:"premium_status"`
	LastPaymentAt     *time.Time `json:"last_payment_at"`
	SubscriptionUntil *time.Time `json:"subscription_until"`
	Roles             []RoleView `json:"roles"`
}

// RoleView: роль с развёрнутой полезной нагрузкой; заполнено ровно одно из вложенных полей.
type RoleView struct {
	ID             int64               `json:"id"`
	RoleType       string              `json:"role_type"`
	IsMainRole     bool                `json:"is_main_role"`
	Student        *StudentView        `json:"student,omitempty"`
	Teacher        *TeacherView        `json:"teacher,omitempty"`
	Parent         *ParentView         `json:"parent,omitempty"`
	Administration *AdministrationView `json:"administration,omitempty"`
}

type StudentView struct {
	StudentID int64           `json:"student_id"`
	Subclass  models.Subclass `json:"subclass"`
	School    models.School   `json:"school"`
}

type TeacherView struct {
	Teacher models.Teacher `json:"teacher"`
	School  models.School  `json:"school"`
}

type ParentView struct {
	ParentID int64       `json:"parent_id"`
	Children []ChildView `json:"children"`
}

type ChildView struct {
	ChildID  int64           `json:"child_id"`
	Subclass models.Subclass `json:"subclass"`
	School   models.School   `json:"school"`
}

type AdministrationView struct {
	AdministrationID int64         `json:"administration_id"`
	School           models.School `json:"school"`
}

func accountView(ctx context.Context, q db.Querier, acc models.Account) (AccountView, error) {
	roles, err := db.ListRoles(ctx, q, acc.ID)
	if err != nil {
		return AccountView{}, err
	}
	v := AccountView{
		TelegramID:        acc.TelegramID,
		PremiumStatus:     acc.PremiumStatus,
		LastPaymentAt:     acc.LastPaymentAt,
		SubscriptionUntil: acc.SubscriptionUntil,
		Roles:             make([]RoleView, 0, len(roles)),
	}
	for _, r := range roles {
		rv, err := roleView(ctx, q, r)
		if err != nil {
			return AccountView{}, err
		}
		v.Roles = append(v.Roles, rv)
	}
	return v, nil
}

func roleView(ctx context.Context, q db.Querier, r models.Role) (RoleView, error) {
	v := RoleView{ID: r.ID, RoleType: r.Type().String(), IsMainRole: r.IsMain}
	switch d := r.Data.(type) {
	case models.StudentData:
		c, err := childView(ctx, q, d)
		if err != nil {
			return v, err
		}
		v.Student = &StudentView{StudentID: d.StudentID, Subclass: c.Subclass, School: c.School}
	case models.TeacherData:
		t, err := getTeacher(ctx, q, d.TeacherID)
		if err != nil {
			return v, err
		}
		sc, err := getSchool(ctx, q, t.SchoolID)
		if err != nil {
			return v, err
		}
		v.Teacher = &TeacherView{Teacher: t, School: sc}
	case models.ParentData:
		children, err := db.ListChildren(ctx, q, d.ParentID)
		if err != nil {
			return v, err
		}
		p := &ParentView{ParentID: d.ParentID, Children: make([]ChildView, 0, len(children))}
		for _, ch := range children {
			c, err := childView(ctx, q, ch)
			if err != nil {
				return v, err
			}
			p.Children = append(p.Children, c)
		}
		v.Parent = p
	case models.AdministrationData:
		sc, err := getSchool(ctx, q, d.SchoolID)
		if err != nil {
			return v, err
		}
		v.Administration = &AdministrationView{AdministrationID: d.AdministrationID, School: sc}
	}
	return v, nil
}

func childView(ctx context.Context, q db.Querier, s models.StudentData) (ChildView, error) {
	sub, err := getSubclass(ctx, q, s.SubclassID)
	if err != nil {
		return ChildView{}, err
	}
	sc, err := getSchool(ctx, q, s.SchoolID)
	if err != nil {
		return ChildView{}, err
	}
	return ChildView{ChildID: s.StudentID, Subclass: sub, School: sc}, nil
}

// GetAccount возвращает аккаунт со всеми ролями.
func (s *Service) GetAccount(ctx context.Context, telegramID int64) (AccountView, error) {
	acc, err := getAccount(ctx, s.db, telegramID)
	if err != nil {
		return AccountView{}, err
	}
	return accountView(ctx, s.db, acc)
}

// PremiumUpdate: новое значение премиум-статуса. Until == nil снимает срок подписки.
type PremiumUpdate struct {
	Status int
	PaidAt *time.Time
	Until  *time.Time
}

func (s *Service) SetPremium(ctx context.Context, telegramID int64, upd PremiumUpdate) (AccountView, error) {
	if upd.Status < 0 {
		return AccountView{}, Validationf("premium_status must be >= 0")
	}
	unlock := s.locks.lock(telegramID)
	defer unlock()

	var view AccountView
	err := s.tx(ctx, func(q db.Querier) error {
		ok, err := db.SetPremium(ctx, q, telegramID, upd.Status, upd.PaidAt, upd.Until)
		if err != nil {
			return err
		}
		if !ok {
			return NotFoundf("User with telegram id %d does not exist", telegramID)
		}
		acc, err := getAccount(ctx, q, telegramID)
		if err != nil {
			return err
		}
		view, err = accountView(ctx, q, acc)
		return err
	})
	if err != nil {
		return AccountView{}, err
	}
	s.logger(ctx).Info("premium status updated", zap.Int64("telegram_id", telegramID), zap.Int("status", upd.Status))
	return view, nil
}

// ExpirePremium сбрасывает истёкшие подписки; вызывается фоновой задачей.
func (s *Service) ExpirePremium(ctx context.Context) (int64, error) {
	n, err := db.ExpirePremium(ctx, s.db, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger(ctx).Info("premium expired", zap.Int64("accounts", n))
	}
	return n, nil
}

func (s *Service) TelegramIDExists(ctx context.Context, telegramID int64) (bool, error) {
	acc, err := db.GetAccountByTelegramID(ctx, s.db, telegramID)
	if err != nil {
		return false, err
	}
	return acc != nil, nil
}

func (s *Service) ListTelegramIDs(ctx context.Context) ([]int64, error) {
	ids, err := db.ListTelegramIDs(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
