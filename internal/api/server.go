package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/donorops/reconcile-backend/internal/api/handlers"
	"github.com/donorops/reconcile-backend/internal/api/middleware"
	"github.com/donorops/reconcile-backend/internal/domain/recon"
	"github.com/donorops/reconcile-backend/internal/infrastructure/storage"
	"github.com/donorops/reconcile-backend/internal/insights"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	engineCfg  recon.Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	generator  insights.Generator
}

// NewServer creates a new API server.
// If generator is nil, the insights endpoint responds 503.
func NewServer(cfg Config, engineCfg recon.Config, repo storage.Repository, generator insights.Generator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:    cfg,
		engineCfg: engineCfg,
		router:    chi.NewRouter(),
		logger:    logger,
		repo:      repo,
		generator: generator,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// CORS
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Reconciliation
		reconcileHandler := handlers.NewReconcileHandler(s.repo, s.engineCfg, s.logger)
		r.Post("/reconcile", reconcileHandler.Reconcile)
		r.Post("/reconcile/csv", reconcileHandler.ReconcileCSV)

		// Run history
		runsHandler := handlers.NewRunsHandler(s.repo)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)
		r.Get("/runs/{id}/history", runsHandler.History)
		r.Get("/runs/{id}/summary", runsHandler.Summary)

		// Resolution decisions
		resolutionHandler := handlers.NewResolutionHandler(s.repo, s.logger)
		r.Post("/runs/{id}/confirm", resolutionHandler.Confirm)
		r.Post("/runs/{id}/flag", resolutionHandler.Flag)

		// AI commentary
		insightsHandler := handlers.NewInsightsHandler(s.repo, s.generator, s.logger)
		r.Post("/runs/{id}/insights", insightsHandler.Generate)
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
