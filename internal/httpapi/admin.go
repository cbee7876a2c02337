package httpapi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/skedule/internal/logging"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) registerAdminAPI(g *echo.Group) {
	g.GET("/stats", s.stats, allow(groupStats))
	g.GET("/schools/:id/timetable.xlsx", s.timetable, allow(groupStats))
}

func (s *Server) stats(c echo.Context) error {
	out, err := s.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) timetable(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	wb, filename, err := s.svc.Timetable(c.Request().Context(), id)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			logging.From(c.Request().Context(), s.log).Warn("close workbook", zap.Error(cerr))
		}
	}()

	h := c.Response().Header()
	h.Set(echo.HeaderContentType, xlsxMIME)
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	c.Response().WriteHeader(http.StatusOK)
	_, err = wb.WriteTo(c.Response())
	return err
}
