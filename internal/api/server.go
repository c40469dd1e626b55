// Package api provides the HTTP API server.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pockettrack/backend/internal/api/handlers"
	"github.com/pockettrack/backend/internal/api/middleware"
	"github.com/pockettrack/backend/internal/application/budget"
	"github.com/pockettrack/backend/internal/application/reconcile"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
	"github.com/pockettrack/backend/internal/observability"
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
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	reconciler *reconcile.Service
	budget     *budget.Service
	metrics    *observability.Metrics
}

// NewServer creates a new API server. metrics may be nil, in which case
// the /metrics endpoint is not registered.
func NewServer(cfg Config, repo storage.Repository, reconciler *reconcile.Service, budgetService *budget.Service, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:     cfg,
		router:     gin.New(),
		logger:     logger,
		repo:       repo,
		reconciler: reconciler,
		budget:     budgetService,
		metrics:    metrics,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.GET("/health", healthHandler.Get)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			s.metrics.Registry,
			promhttp.HandlerOpts{},
		)))
	}

	api := s.router.Group("/api")
	{
		transactionsHandler := handlers.NewTransactionsHandler(s.repo)
		api.GET("/transactions", transactionsHandler.List)
		api.POST("/transactions", transactionsHandler.Create)
		api.GET("/transactions/:id", transactionsHandler.Get)
		api.POST("/transactions/:id/cancel", transactionsHandler.Cancel)

		recurringHandler := handlers.NewRecurringHandler(s.repo)
		api.GET("/recurring", recurringHandler.List)
		api.POST("/recurring", recurringHandler.Create)
		api.POST("/recurring/:id/deactivate", recurringHandler.Deactivate)

		matchesHandler := handlers.NewMatchesHandler(s.repo, s.reconciler)
		api.GET("/matches", matchesHandler.List)
		api.POST("/matches/confirm", matchesHandler.Confirm)
		api.POST("/matches/:id/dismiss", matchesHandler.Dismiss)

		importsHandler := handlers.NewImportsHandler(s.repo, s.reconciler, s.budget)
		api.POST("/import", importsHandler.Import)
		api.GET("/imports", importsHandler.ListRuns)

		budgetHandler := handlers.NewBudgetHandler(s.repo, s.budget)
		api.GET("/budget/categories", budgetHandler.ListCategories)
		api.POST("/budget/categories", budgetHandler.CreateCategory)
		api.DELETE("/budget/categories/:id", budgetHandler.DeleteCategory)
		api.GET("/budget/summary", budgetHandler.Summary)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

// Router returns the underlying router for testing.
func (s *Server) Router() http.Handler {
	return s.router
}
