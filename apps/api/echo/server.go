package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/result"
	"github.com/trezcool/academia/core/student"
	metricsvc "github.com/trezcool/academia/services/metrics"
)

type (
	// Pinger checks that the database is reachable.
	Pinger interface {
		PingContext(ctx context.Context) error
	}

	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		DB            Pinger
		Metrics       *metricsvc.Metrics
		AttendanceSvc attendance.ServiceInterface
		ResultSvc     result.ServiceInterface
		StudentSvc    student.ServiceInterface
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if s.deps.Metrics != nil {
		s.app.Use(s.deps.Metrics.Middleware())
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/healthz", s.health)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.app.Group("/api", middleware.JWTWithConfig(newJWTConfig(conf)))

	registerAttendanceAPI(api, s.deps.AttendanceSvc, s.deps.Validate)
	registerResultAPI(api, s.deps.ResultSvc, s.deps.Validate)
	registerStudentAPI(api, s.deps.StudentSvc)
}

// Start blocks until the server stops. Listening errors are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Academia API!")
}

func (s *Server) health(ctx echo.Context) error {
	status := http.StatusOK
	resp := echo.Map{"status": "ok", "db": "ok"}
	if s.deps.DB != nil {
		if err := s.deps.DB.PingContext(ctx.Request().Context()); err != nil {
			status = http.StatusServiceUnavailable
			resp = echo.Map{"status": "unavailable", "db": err.Error()}
		}
	}
	return ctx.JSON(status, resp)
}
