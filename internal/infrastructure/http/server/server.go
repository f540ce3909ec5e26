// Package server provides the HTTP server for the meal plan API
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/orbitfit/mealplan/internal/infrastructure/config"
	"github.com/orbitfit/mealplan/internal/infrastructure/http/handlers"
	"github.com/orbitfit/mealplan/internal/infrastructure/http/middleware"
	"github.com/orbitfit/mealplan/internal/infrastructure/monitoring"
	"github.com/orbitfit/mealplan/pkg/healthcheck"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *chi.Mux
	server   *http.Server
	handlers *handlers.PlanHandlers
	health   *healthcheck.HealthCheck
	metrics  *monitoring.Metrics
}

// NewServer creates a new HTTP server instance. metrics may be nil when
// metrics are disabled.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	planHandlers *handlers.PlanHandlers,
	health *healthcheck.HealthCheck,
	metrics *monitoring.Metrics,
) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger.Named("http-server"),
		handlers: planHandlers,
		health:   health,
		metrics:  metrics,
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, fmt.Sprint(cfg.Server.Port)),
		Handler:           otelhttp.NewHandler(s.router, "mealplan-api"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

// Router exposes the configured router for in-process tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	var recorder middleware.HTTPRecorder
	if s.metrics != nil {
		recorder = s.metrics
	}
	mw := middleware.New(s.config, s.logger, recorder)

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(mw.Logger())
	r.Use(mw.Recovery())
	r.Use(mw.Metrics())

	r.Get(s.config.Monitoring.HealthCheckPath, s.health.Handler())
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		if s.config.Server.WriteTimeout > 0 {
			r.Use(chimiddleware.Timeout(s.config.Server.WriteTimeout))
		}
		s.handlers.Routes(r)
	})

	return r
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
