package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/canopyhq/canopylog/internal/config"
	"github.com/canopyhq/canopylog/internal/response"
	"github.com/canopyhq/canopylog/internal/sink"
	"github.com/canopyhq/canopylog/internal/wideevent"
)

const (
	recentLimit     = 100
	shutdownTimeout = 10 * time.Second
)

// Server holds the Echo app and the wide-event pipeline dependencies.
type Server struct {
	Echo   *echo.Echo
	Config *config.Config

	core        *wideevent.Core
	registry    *sink.Registry
	activeSinks []string
	recent      *RecentStore
	log         zerolog.Logger
}

// New builds the Echo server and registers routes. Every request passes
// through the wide-event middleware; the handler-facing logger is retrieved
// with wideevent.FromContext.
func New(cfg *config.Config, core *wideevent.Core, registry *sink.Registry, activeSinks []string, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler(log)
	e.Use(middleware.Recover(), WideEvent(core))

	s := &Server{
		Echo:        e,
		Config:      cfg,
		core:        core,
		registry:    registry,
		activeSinks: activeSinks,
		recent:      newRecentStore(recentLimit),
		log:         log,
	}

	e.GET("/healthz", func(c echo.Context) error {
		return response.OK(c, map[string]any{"status": "ok"}, "")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Ingest: remote batch clients POST finalized events here.
	e.POST("/ingest/events", s.handleIngest)
	e.GET("/logs/recent", s.handleRecent)

	// Sink management API (read-only; the sink set is fixed at startup).
	e.GET("/sinks", s.handleSinks)
	e.GET("/sinks/types", s.handleSinkTypes)
	e.GET("/sinks/types/:type", s.handleSinkTypeInfo)
	e.GET("/sinks/info", s.handleSinkInfo)

	return s
}

// Start starts the HTTP server. Blocks until the context is cancelled or the
// server fails. On context cancel, Shutdown is called so in-flight drain
// deliveries complete.
func (s *Server) Start(ctx context.Context) error {
	s.Echo.Server.ReadTimeout = s.Config.Server.ReadTimeoutDuration()
	s.Echo.Server.WriteTimeout = s.Config.Server.WriteTimeoutDuration()
	s.Echo.Server.IdleTimeout = s.Config.Server.IdleTimeoutDuration()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("shutdown incomplete, events may be lost")
		}
	}()
	err := s.Echo.Start(":" + s.Config.Server.Port)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server and waits for in-flight event
// deliveries so nothing accumulated so far is lost.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.Echo.Shutdown(ctx); err != nil {
		return err
	}
	return s.core.Close(ctx)
}
