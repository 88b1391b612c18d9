// Package server provides the HTTP surface for notesync.
//
// It stands in for the original UI triggers: the status endpoint is the
// status-bar readout, the sync endpoint is the status-bar click, and the
// decorate endpoint is the render hook.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notesync/internal/decorate"
	issuesync "github.com/fyrsmithlabs/notesync/internal/sync"
)

// Server provides HTTP endpoints for notesync.
type Server struct {
	echo      *echo.Echo
	sync      issuesync.Service
	decorator *decorate.Decorator
	logger    *zap.Logger
	config    *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(sync issuesync.Service, decorator *decorate.Decorator, logger *zap.Logger, cfg *Config) (*Server, error) {
	if sync == nil {
		return nil, fmt.Errorf("sync service cannot be nil")
	}
	if decorator == nil {
		return nil, fmt.Errorf("decorator cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9340,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:      e,
		sync:      sync,
		decorator: decorator,
		logger:    logger,
		config:    cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/status", s.handleStatus)
	v1.POST("/sync", s.handleSync)
	v1.POST("/decorate", s.handleDecorate)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	Running bool              `json:"running"`
	Last    *issuesync.Result `json:"last,omitempty"`
}

// SyncResponse is the response body for POST /api/v1/sync.
type SyncResponse struct {
	Started bool              `json:"started"`
	Result  *issuesync.Result `json:"result,omitempty"`
}

// DecorateRequest is the request body for POST /api/v1/decorate.
type DecorateRequest struct {
	Content string `json:"content"`
}

// DecorateResponse is the response body for POST /api/v1/decorate.
type DecorateResponse struct {
	Content string `json:"content"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleStatus reports the run gate and the last finished run.
func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Running: s.sync.Running(),
		Last:    s.sync.LastResult(),
	})
}

// handleSync triggers one synchronization run. An overlapping trigger is
// dropped with 409; a failed run surfaces one generic error.
func (s *Server) handleSync(c echo.Context) error {
	res, err := s.sync.TryRun(c.Request().Context())
	if errors.Is(err, issuesync.ErrRunInFlight) {
		return c.JSON(http.StatusConflict, SyncResponse{Started: false})
	}
	if err != nil {
		s.logger.Warn("sync trigger failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "failed to update issues")
	}
	return c.JSON(http.StatusOK, SyncResponse{Started: true, Result: res})
}

// handleDecorate enriches issue links in the submitted content.
func (s *Server) handleDecorate(c echo.Context) error {
	var req DecorateRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid decorate request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content field is required")
	}

	decorated := s.decorator.Decorate(c.Request().Context(), req.Content)
	return c.JSON(http.StatusOK, DecorateResponse{Content: decorated})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
