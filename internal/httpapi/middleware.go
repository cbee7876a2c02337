package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/logging"
	"github.com/Spok95/skedule/internal/metrics"
)

// requestID берёт X-Request-ID клиента или выдаёт новый и вешает
// логгер запроса на context.
func requestID(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			ctx := ctxutil.WithRequestID(req.Context(), id)
			ctx = logging.With(ctx, base.With(zap.String("request_id", id)))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func accessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			t0 := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logging.From(c.Request().Context(), nil).Info("http",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("route", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(t0)),
			)
			return nil
		}
	}
}

func observeHTTP() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			t0 := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveHTTP(route, c.Response().Status, time.Since(t0))
			return nil
		}
	}
}
