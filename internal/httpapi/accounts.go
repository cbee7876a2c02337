package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/skedule/internal/models"
	"github.com/Spok95/skedule/internal/service"
)

type roleBody struct {
	TelegramID int64 `json:"telegram_id" validate:"required,gt=0"`
	SubclassID int64 `json:"subclass_id" validate:"gte=0"`
	TeacherID  int64 `json:"teacher_id" validate:"gte=0"`
	SchoolID   int64 `json:"school_id" validate:"gte=0"`
}

type childBody struct {
	TelegramID int64 `json:"telegram_id" validate:"required,gt=0"`
	SubclassID int64 `json:"subclass_id" validate:"required,gt=0"`
}

type premiumBody struct {
	PremiumStatus     int        `json:"premium_status" validate:"gte=0"`
	LastPaymentAt     *time.Time `json:"last_payment_at"`
	SubscriptionUntil *time.Time `json:"subscription_until"`
}

func (s *Server) registerAccountAPI(g *echo.Group) {
	acc := allow(groupAccounts)
	g.POST("/registration/:role", s.register, acc)
	g.POST("/roles/add/:role", s.addRole, acc)
	g.POST("/roles/change/:role", s.changeRole, acc)
	g.POST("/roles/children", s.addChild, acc)
	g.DELETE("/roles/children/:child_id", s.removeChild, acc)

	g.GET("/accounts", s.telegramIDs, allow(groupIDList))
	g.GET("/accounts/:telegram_id", s.account, acc)
	g.GET("/accounts/:telegram_id/exists", s.telegramIDExists, allow(groupIDExists))
	g.PUT("/accounts/:telegram_id/premium", s.setPremium, allow(groupPremium))
}

// roleRequest разбирает тип роли из пути и тело; проверяет, что нужная ссылка передана.
func (s *Server) roleRequest(c echo.Context) (int64, service.RoleRequest, error) {
	t, err := models.ParseRoleType(c.Param("role"))
	if err != nil {
		return 0, service.RoleRequest{}, fieldError("role", err.Error())
	}
	var b roleBody
	if err := s.bind(c, &b); err != nil {
		return 0, service.RoleRequest{}, err
	}
	switch {
	case t == models.RoleStudent && b.SubclassID == 0:
		return 0, service.RoleRequest{}, fieldError("subclass_id", "this field is required for a student")
	case t == models.RoleTeacher && b.TeacherID == 0:
		return 0, service.RoleRequest{}, fieldError("teacher_id", "this field is required for a teacher")
	case t == models.RoleAdministration && b.SchoolID == 0:
		return 0, service.RoleRequest{}, fieldError("school_id", "this field is required for an administration")
	}
	return b.TelegramID, service.RoleRequest{
		Type:       t,
		SubclassID: b.SubclassID,
		TeacherID:  b.TeacherID,
		SchoolID:   b.SchoolID,
	}, nil
}

func (s *Server) register(c echo.Context) error {
	tid, req, err := s.roleRequest(c)
	if err != nil {
		return err
	}
	view, err := s.svc.Register(c.Request().Context(), tid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

func (s *Server) addRole(c echo.Context) error {
	tid, req, err := s.roleRequest(c)
	if err != nil {
		return err
	}
	view, err := s.svc.AddRole(c.Request().Context(), tid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

func (s *Server) changeRole(c echo.Context) error {
	tid, req, err := s.roleRequest(c)
	if err != nil {
		return err
	}
	view, err := s.svc.ChangeRole(c.Request().Context(), tid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) addChild(c echo.Context) error {
	var b childBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	child, err := s.svc.AddChild(c.Request().Context(), b.TelegramID, b.SubclassID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, child)
}

func (s *Server) removeChild(c echo.Context) error {
	childID, err := pathID(c, "child_id")
	if err != nil {
		return err
	}
	tid, err := optInt64(c, "telegram_id")
	if err != nil {
		return err
	}
	if tid == nil {
		return fieldError("telegram_id", "this field is required")
	}
	if err := s.svc.RemoveChild(c.Request().Context(), *tid, childID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) account(c echo.Context) error {
	tid, err := pathID(c, "telegram_id")
	if err != nil {
		return err
	}
	view, err := s.svc.GetAccount(c.Request().Context(), tid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) telegramIDExists(c echo.Context) error {
	tid, err := pathID(c, "telegram_id")
	if err != nil {
		return err
	}
	ok, err := s.svc.TelegramIDExists(c.Request().Context(), tid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": ok})
}

func (s *Server) telegramIDs(c echo.Context) error {
	ids, err := s.svc.ListTelegramIDs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"telegram_ids": ids})
}

func (s *Server) setPremium(c echo.Context) error {
	tid, err := pathID(c, "telegram_id")
	if err != nil {
		return err
	}
	var b premiumBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	view, err := s.svc.SetPremium(c.Request().Context(), tid, service.PremiumUpdate{
		Status: b.PremiumStatus,
		PaidAt: b.LastPaymentAt,
		Until:  b.SubscriptionUntil,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}
