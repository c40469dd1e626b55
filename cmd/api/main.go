// Command api runs the PocketTrack HTTP API server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pockettrack/backend/internal/api"
	"github.com/pockettrack/backend/internal/application/budget"
	"github.com/pockettrack/backend/internal/application/reconcile"
	"github.com/pockettrack/backend/internal/domain/matcher"
	"github.com/pockettrack/backend/internal/infrastructure/config"
	"github.com/pockettrack/backend/internal/infrastructure/logging"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
	"github.com/pockettrack/backend/internal/observability"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments set environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		logging.NewLogger(config.LoggingConfig{}).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "api")

	repo, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	metrics := observability.NewMetrics()

	matchCfg := matcher.Config{
		AmountTolerance: cfg.Reconcile.AmountTolerance,
		DateWindowDays:  cfg.Reconcile.DateWindowDays,
		MinConfidence:   cfg.Reconcile.MinConfidence,
	}
	reconciler := reconcile.NewService(repo, matchCfg, metrics,
		logging.NewLoggerWithSystem(cfg.Observability.Logging, "reconcile"))
	budgetService := budget.NewService(repo, metrics,
		logging.NewLoggerWithSystem(cfg.Observability.Logging, "budget"))

	server := api.NewServer(api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, repo, reconciler, budgetService, metrics, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("received signal, shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
