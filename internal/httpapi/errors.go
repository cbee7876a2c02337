package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/skedule/internal/logging"
	"github.com/Spok95/skedule/internal/observability"
	"github.com/Spok95/skedule/internal/service"
)

func statusOf(k service.Kind) int {
	switch k {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict, service.KindInvariant:
		return http.StatusConflict
	case service.KindValidation:
		return http.StatusUnprocessableEntity
	case service.KindBadContent:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fieldPath "filters[0].type" без имени корневой структуры.
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func (s *Server) errorHandler(err error, c echo.Context) {
	var (
		code    int
		message any
		he      *echo.HTTPError
		ve      validator.ValidationErrors
		se      *service.Error
	)
	log := logging.From(c.Request().Context(), s.log)

	switch {
	case errors.As(err, &he):
		if inner, ok := he.Internal.(*echo.HTTPError); ok {
			he = inner
		}
		code = he.Code
		message = he.Message
	case errors.As(err, &ve):
		fldErrs := make(map[string]string, len(ve))
		for _, fe := range ve {
			fldErrs[fieldPath(fe)] = fe.Translate(translator)
		}
		code = http.StatusBadRequest
		message = fldErrs
	case errors.As(err, &se):
		code = statusOf(se.Kind)
		message = se.Msg
		// Invariant уже залогирован сервисом с severity=CRITICAL
		if se.Kind == service.KindDownstream {
			log.Error("downstream failed", zap.Error(err))
			observability.CaptureErr(err)
		}
	default:
		code = http.StatusInternalServerError
		message = http.StatusText(http.StatusInternalServerError)
		log.Error("unhandled error", zap.Error(err), zap.String("route", c.Path()))
		observability.CaptureErr(err)
	}

	if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, message)
	}
	if err != nil {
		log.Warn("write error response", zap.Error(err))
	}
}
