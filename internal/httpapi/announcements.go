package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/skedule/internal/service"
)

type filterBody struct {
	Type                    string  `json:"type" validate:"required,oneof=teacher subclass"`
	Name                    string  `json:"name" validate:"max=200"`
	EducationalLevel        *int    `json:"educational_level" validate:"omitempty,gte=0,lte=12"`
	Identificator           *string `json:"identificator" validate:"omitempty,max=50"`
	AdditionalIdentificator *string `json:"additional_identificator" validate:"omitempty,max=50"`
}

type announcementBody struct {
	SchoolID          int64        `json:"school_id" validate:"required,gt=0"`
	Title             string       `json:"title" validate:"required,notblank,max=256"`
	Text              string       `json:"text" validate:"required,notblank,max=4000"`
	Filters           []filterBody `json:"filters" validate:"dive"`
	ResendToParents   bool         `json:"resend_to_parents"`
	SendOnlyToParents bool         `json:"send_only_to_parents"`
	Silent            bool         `json:"silent"`
}

type broadcastBody struct {
	Title  string `json:"title" validate:"required,notblank,max=256"`
	Text   string `json:"text" validate:"required,notblank"`
	Silent bool   `json:"silent"`
}

type textBody struct {
	Text   string `json:"text" validate:"required,notblank,min=5,max=2500"`
	Silent bool   `json:"silent"`
}

func (s *Server) registerAnnouncementAPI(g *echo.Group) {
	a := g.Group("/announcements")
	a.POST("/preview", s.previewAnnouncement, allow(groupAnnounce))
	a.POST("", s.createAnnouncement, allow(groupAnnounce))
	a.GET("/history/:role_id", s.history, allow(groupHistory))
	a.POST("/toall", s.broadcast, allow(groupBroadcast))
	a.POST("/text/toall", s.broadcastText, allow(groupBroadcast))
}

func (f filterBody) filter(i int) (service.Filter, error) {
	switch f.Type {
	case "teacher":
		if f.Name == "" {
			return nil, fieldError(fmt.Sprintf("filters[%d].name", i), "this field is required for a teacher filter")
		}
		return service.TeacherFilter{Name: f.Name}, nil
	default:
		return service.SubclassFilter{
			EducationalLevel:        f.EducationalLevel,
			Identificator:           f.Identificator,
			AdditionalIdentificator: f.AdditionalIdentificator,
		}, nil
	}
}

func (s *Server) announcementRequest(c echo.Context) (service.AnnouncementRequest, error) {
	var b announcementBody
	if err := s.bind(c, &b); err != nil {
		return service.AnnouncementRequest{}, err
	}
	req := service.AnnouncementRequest{
		SchoolID:          b.SchoolID,
		Title:             b.Title,
		Text:              b.Text,
		ResendToParents:   b.ResendToParents,
		SendOnlyToParents: b.SendOnlyToParents,
		Silent:            b.Silent,
	}
	for i, fb := range b.Filters {
		f, err := fb.filter(i)
		if err != nil {
			return service.AnnouncementRequest{}, err
		}
		req.Filters = append(req.Filters, f)
	}
	return req, nil
}

func (s *Server) previewAnnouncement(c echo.Context) error {
	req, err := s.announcementRequest(c)
	if err != nil {
		return err
	}
	out, err := s.svc.PreviewAnnouncement(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createAnnouncement(c echo.Context) error {
	req, err := s.announcementRequest(c)
	if err != nil {
		return err
	}
	out, err := s.svc.CreateAnnouncement(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) history(c echo.Context) error {
	roleID, err := pathID(c, "role_id")
	if err != nil {
		return err
	}
	out, err := s.svc.History(c.Request().Context(), roleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) broadcast(c echo.Context) error {
	var b broadcastBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	ids, err := s.svc.BroadcastAnnouncement(c.Request().Context(), b.Title, b.Text, b.Silent)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"telegram_ids": ids})
}

func (s *Server) broadcastText(c echo.Context) error {
	var b textBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	ids, err := s.svc.BroadcastText(c.Request().Context(), b.Text, b.Silent)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"telegram_ids": ids})
}
