package server

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/akave-ai/protokoll/internal/config"
	"github.com/akave-ai/protokoll/internal/handler"
	"github.com/akave-ai/protokoll/internal/logfile"
	"github.com/akave-ai/protokoll/internal/repository"
	"github.com/akave-ai/protokoll/internal/response"
)

//go:embed all:web
var webFS embed.FS

// Deps are the collaborators New wires into the routes.
type Deps struct {
	Store    repository.Store
	Logger   zerolog.Logger
	NewRelic *newrelic.Application // optional
	Now      func() time.Time      // optional, defaults to time.Now
}

// Server holds the Echo app and dependencies.
type Server struct {
	Echo   *echo.Echo
	Config *config.Config
	logger zerolog.Logger
}

// New builds the Echo server and registers routes.
func New(cfg *config.Config, deps Deps) *Server {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.Server.IdleTimeout) * time.Second

	e.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		requestLogger(deps.Logger),
		middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.CORSAllowedOrigins}),
	)
	if deps.NewRelic != nil {
		e.Use(newRelicTransaction(deps.NewRelic))
	}

	logs := &handler.LogHandler{
		Store:  deps.Store,
		Writer: logfile.NewWriter(cfg.Logs.Dir, now),
		Reader: logfile.NewReader(cfg.Logs.Dir),
		Logger: deps.Logger,
		Now:    now,
	}

	// Bodies are capped at 100 KiB.
	api := e.Group("/api", middleware.BodyLimit("100K"))
	api.POST("/logs", logs.Ingest)
	api.GET("/logs", logs.List)
	api.GET("/logs/file", logs.ListFile)
	api.GET("/health", logs.Health)

	// Demo UI
	e.StaticFS("/", echo.MustSubFS(webFS, "web"))

	return &Server{Echo: e, Config: cfg, logger: deps.Logger}
}

// Start starts the HTTP server. Blocks until the context is cancelled or the
// server fails. On context cancel the server is shut down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	addr := ":" + s.Config.Server.Port
	go func() {
		s.logger.Info().Str("addr", addr).Msgf("server is running on http://localhost%s", addr)
		errCh <- s.Echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
