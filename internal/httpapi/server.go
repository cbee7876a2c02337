package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Spok95/skedule/internal/metrics"
	"github.com/Spok95/skedule/internal/service"
)

// Pinger: то, что умеет *sql.DB; нужен только для /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Address   string
	Service   *service.Service
	DB        Pinger
	JWTSecret []byte
	Logger    *zap.Logger
	// DisableReqLogs глушит access-лог (тесты)
	DisableReqLogs bool
}

type Server struct {
	opts     *Options
	app      *echo.Echo
	log      *zap.Logger
	svc      *service.Service
	validate *validator.Validate
}

func NewServer(opts *Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		opts:     opts,
		app:      echo.New(),
		log:      log,
		svc:      opts.Service,
		validate: newValidator(),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.Recover())
	s.app.Use(requestID(s.log))
	if !s.opts.DisableReqLogs {
		s.app.Use(accessLog())
	}
	s.app.Use(observeHTTP())
	s.app.HTTPErrorHandler = s.errorHandler

	s.app.GET("/healthz", s.healthz)
	s.app.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := s.app.Group("/api", authJWT(s.opts.JWTSecret))
	s.registerAccountAPI(api)
	s.registerEntityAPI(api)
	s.registerInfoAPI(api)
	s.registerAnnouncementAPI(api)
	s.registerAdminAPI(api)
}

func (s *Server) healthz(c echo.Context) error {
	if s.opts.DB == nil {
		return c.String(http.StatusOK, "ok")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.opts.DB.PingContext(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "db not ok: "+err.Error())
	}
	metrics.ObserveDBPing(time.Since(t0))
	return c.String(http.StatusOK, "ok")
}

// Start блокирует до Stop; http.ErrServerClosed не считается ошибкой.
func (s *Server) Start() error {
	s.log.Info("http: listening", zap.String("addr", s.opts.Address))
	if err := s.app.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
