// Package api exposes the reconciliation service over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/eshaffer321/travel-reconcile/internal/api/handlers"
	"github.com/eshaffer321/travel-reconcile/internal/api/middleware"
	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/config"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           config.DefaultAPIPort,
		AllowedOrigins: middleware.DefaultCORSConfig().AllowedOrigins,
	}
}

// ConfigFrom builds the server config from the application config's api
// section, keeping the default origins when none are configured.
func ConfigFrom(cfg config.APIConfig) Config {
	c := DefaultConfig()
	if cfg.Port != 0 {
		c.Port = cfg.Port
	}
	if len(cfg.AllowedOrigins) > 0 {
		c.AllowedOrigins = cfg.AllowedOrigins
	}
	return c
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	service    *reconcile.Service
}

// NewServer creates a new API server.
func NewServer(cfg Config, service *reconcile.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		service: service,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.Recoverer)

	// CORS
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = s.config.AllowedOrigins
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler(s.service)
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		reconcileHandler := handlers.NewReconcileHandler(s.service)
		r.Post("/reconcile", reconcileHandler.Reconcile)
		r.Get("/strategies", reconcileHandler.Strategies)

		// Background reconciliations
		jobsHandler := handlers.NewJobsHandler(s.service)
		r.Get("/jobs", jobsHandler.List)
		r.Get("/jobs/{jobId}", jobsHandler.Get)

		// Recorded runs
		runsHandler := handlers.NewRunsHandler(s.service)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
