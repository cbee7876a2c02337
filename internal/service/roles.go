package service

import (
	"context"
	"strconv"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/metrics"
	"github.com/Spok95/skedule/internal/models"
	"github.com/Spok95/skedule/internal/observability"
	"go.uber.org/zap"
)

// RoleRequest: какую роль прикрепить и на что она ссылается.
// SubclassID нужен ученику, TeacherID учителю, SchoolID администрации.
type RoleRequest struct {
	Type       models.RoleType
	SubclassID int64
	TeacherID  int64
	SchoolID   int64
}

// buildRoleData проверяет ссылки запроса и собирает полезную нагрузку роли.
func buildRoleData(ctx context.Context, q db.Querier, req RoleRequest) (models.RoleData, error) {
	switch req.Type {
	case models.RoleStudent:
		sc, err := getSubclass(ctx, q, req.SubclassID)
		if err != nil {
			return nil, err
		}
		return models.StudentData{SchoolID: sc.SchoolID, SubclassID: sc.ID}, nil
	case models.RoleTeacher:
		t, err := getTeacher(ctx, q, req.TeacherID)
		if err != nil {
			return nil, err
		}
		return models.TeacherData{TeacherID: t.ID}, nil
	case models.RoleParent:
		return models.ParentData{}, nil
	case models.RoleAdministration:
		sc, err := getSchool(ctx, q, req.SchoolID)
		if err != nil {
			return nil, err
		}
		return models.AdministrationData{SchoolID: sc.ID}, nil
	}
	return nil, Validationf("unknown role type %d", int(req.Type))
}

// Register создаёт аккаунт и его первую, главную, роль.
func (s *Service) Register(ctx context.Context, telegramID int64, req RoleRequest) (AccountView, error) {
	unlock := s.locks.lock(telegramID)
	defer unlock()

	var view AccountView
	err := s.tx(ctx, func(q db.Querier) error {
		if err := checkUniqueAccount(ctx, q, telegramID); err != nil {
			return err
		}
		data, err := buildRoleData(ctx, q, req)
		if err != nil {
			return err
		}
		acc, err := db.CreateAccount(ctx, q, telegramID)
		if err != nil {
			return err
		}
		if _, err := db.CreateRole(ctx, q, acc.ID, true, data); err != nil {
			return err
		}
		view, err = accountView(ctx, q, acc)
		return err
	})
	if err != nil {
		return AccountView{}, err
	}
	metrics.RoleTransition("register", req.Type.String())
	s.logger(ctx).Info("account registered", zap.Int64("telegram_id", telegramID), zap.Stringer("role", req.Type))
	return view, nil
}

// AddRole прикрепляет неглавную роль нового типа.
func (s *Service) AddRole(ctx context.Context, telegramID int64, req RoleRequest) (AccountView, error) {
	unlock := s.locks.lock(telegramID)
	defer unlock()

	var view AccountView
	err := s.tx(ctx, func(q db.Querier) error {
		acc, err := lockAccount(ctx, q, telegramID)
		if err != nil {
			return err
		}
		roles, err := db.ListRoles(ctx, q, acc.ID)
		if err != nil {
			return err
		}
		if _, ok := models.RoleOfType(roles, req.Type); ok {
			return Conflictf("User with telegram id %d already has %s role", telegramID, req.Type)
		}
		_, hasMain := models.MainRole(roles)
		if len(roles) > 0 && !hasMain {
			return s.invalidUser(ctx, telegramID, roles)
		}
		data, err := buildRoleData(ctx, q, req)
		if err != nil {
			return err
		}
		// аккаунт без ролей получает главную, иначе инвариант нарушится
		if _, err := db.CreateRole(ctx, q, acc.ID, !hasMain, data); err != nil {
			return err
		}
		view, err = accountView(ctx, q, acc)
		return err
	})
	if err != nil {
		return AccountView{}, err
	}
	metrics.RoleTransition("add", req.Type.String())
	return view, nil
}

// ChangeRole делает роль типа req.Type главной. Что станет с остальными ролями,
// решает planChange по наличию роли и премиум-статусу.
func (s *Service) ChangeRole(ctx context.Context, telegramID int64, req RoleRequest) (AccountView, error) {
	unlock := s.locks.lock(telegramID)
	defer unlock()

	var (
		view   AccountView
		branch changeBranch
	)
	err := s.tx(ctx, func(q db.Querier) error {
		acc, err := lockAccount(ctx, q, telegramID)
		if err != nil {
			return err
		}
		roles, err := db.ListRoles(ctx, q, acc.ID)
		if err != nil {
			return err
		}
		main, ok := models.MainRole(roles)
		if !ok {
			return s.invalidUser(ctx, telegramID, roles)
		}
		existing, hasExisting := models.RoleOfType(roles, req.Type)
		branch = planChange(hasExisting, acc.Premium())
		// ссылки запроса проверяются при любой ветке, в том числе при promote
		data, err := buildRoleData(ctx, q, req)
		if err != nil {
			return err
		}

		switch {
		case branch == branchPromote:
			if existing.ID == main.ID {
				break
			}
			if err := db.SetMainRole(ctx, q, main.ID, false); err != nil {
				return err
			}
			if err := db.SetMainRole(ctx, q, existing.ID, true); err != nil {
				return err
			}

		case branch == branchAppendMain:
			if err := db.SetMainRole(ctx, q, main.ID, false); err != nil {
				return err
			}
			if _, err := db.CreateRole(ctx, q, acc.ID, true, data); err != nil {
				return err
			}

		case branch.destructive():
			// у базового аккаунта после смены остаётся одна роль: удаляем существующую,
			// главную и всё, что осталось от истёкшего премиума
			for _, r := range roles {
				if err := db.DeleteRole(ctx, q, r); err != nil {
					return err
				}
			}
			if len(roles) > 2 || (len(roles) == 2 && !hasExisting) {
				s.logger(ctx).Warn("basic account had extra roles, removed",
					zap.Int64("telegram_id", telegramID), zap.Int("roles", len(roles)))
			}
			if _, err := db.CreateRole(ctx, q, acc.ID, true, data); err != nil {
				return err
			}
		}

		view, err = accountView(ctx, q, acc)
		return err
	})
	if err != nil {
		return AccountView{}, err
	}
	metrics.RoleTransition("change", string(branch))
	s.logger(ctx).Info("main role changed",
		zap.Int64("telegram_id", telegramID), zap.Stringer("role", req.Type), zap.String("branch", string(branch)))
	return view, nil
}

// invalidUser: у аккаунта есть роли, но нет главной. Не чиним, а сообщаем.
func (s *Service) invalidUser(ctx context.Context, telegramID int64, roles []models.Role) error {
	err := &Error{Kind: KindInvariant, Msg: "Invalid user " + strconv.FormatInt(telegramID, 10)}
	s.logger(ctx).Error("account has roles but no main role",
		zap.String("severity", "CRITICAL"), zap.Int64("telegram_id", telegramID), zap.Int("roles", len(roles)))
	metrics.InvariantViolations.Inc()
	observability.CaptureCritical(err, map[string]string{"telegram_id": strconv.FormatInt(telegramID, 10)})
	return err
}

// parentOf возвращает payload роли родителя или Conflict.
func parentOf(roles []models.Role, telegramID int64) (models.ParentData, error) {
	r, ok := models.RoleOfType(roles, models.RoleParent)
	if !ok {
		return models.ParentData{}, Conflictf("User with telegram id %d does not have parent role", telegramID)
	}
	return r.Data.(models.ParentData), nil
}

// AddChild добавляет ребёнка родителю; базовый статус ограничен Limits.MaxChildren.
func (s *Service) AddChild(ctx context.Context, telegramID, subclassID int64) (ChildView, error) {
	unlock := s.locks.lock(telegramID)
	defer unlock()

	var child ChildView
	err := s.tx(ctx, func(q db.Querier) error {
		acc, err := lockAccount(ctx, q, telegramID)
		if err != nil {
			return err
		}
		roles, err := db.ListRoles(ctx, q, acc.ID)
		if err != nil {
			return err
		}
		parent, err := parentOf(roles, telegramID)
		if err != nil {
			return err
		}
		children, err := db.ListChildren(ctx, q, parent.ParentID)
		if err != nil {
			return err
		}
		if !acc.Premium() && len(children) >= s.limits.MaxChildren {
			return Conflictf("User with telegram id %d has basic status and already has %d children", telegramID, len(children))
		}
		sc, err := getSubclass(ctx, q, subclassID)
		if err != nil {
			return err
		}
		pid := parent.ParentID
		id, err := db.CreateStudent(ctx, q, models.StudentData{SchoolID: sc.SchoolID, SubclassID: sc.ID, ParentID: &pid})
		if err != nil {
			return err
		}
		school, err := getSchool(ctx, q, sc.SchoolID)
		if err != nil {
			return err
		}
		child = ChildView{ChildID: id, Subclass: sc, School: school}
		return nil
	})
	if err != nil {
		return ChildView{}, err
	}
	metrics.RoleTransition("add_child", "ok")
	return child, nil
}

// RemoveChild удаляет ребёнка, только если он принадлежит этому родителю.
func (s *Service) RemoveChild(ctx context.Context, telegramID, childID int64) error {
	unlock := s.locks.lock(telegramID)
	defer unlock()

	err := s.tx(ctx, func(q db.Querier) error {
		acc, err := lockAccount(ctx, q, telegramID)
		if err != nil {
			return err
		}
		roles, err := db.ListRoles(ctx, q, acc.ID)
		if err != nil {
			return err
		}
		parent, err := parentOf(roles, telegramID)
		if err != nil {
			return err
		}
		ok, err := db.DeleteChild(ctx, q, parent.ParentID, childID)
		if err != nil {
			return err
		}
		if !ok {
			return NotFoundf("Child with id %d of user with telegram id %d does not exist", childID, telegramID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RoleTransition("remove_child", "ok")
	return nil
}
