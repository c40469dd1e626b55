// Command import reconciles a bank statement export (CSV or JSON)
// against stored transactions from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pockettrack/backend/internal/adapters/bankfeed"
	"github.com/pockettrack/backend/internal/application/reconcile"
	"github.com/pockettrack/backend/internal/domain/matcher"
	"github.com/pockettrack/backend/internal/infrastructure/config"
	"github.com/pockettrack/backend/internal/infrastructure/logging"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		userID     = flag.String("user", "default", "user to reconcile against")
		file       = flag.String("file", "", "statement file (.csv or .json)")
		source     = flag.String("source", "", "source label for the import run (defaults to the file name)")
		dryRun     = flag.Bool("dry-run", false, "evaluate matches without writing")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: import -file statement.csv [-user id] [-dry-run]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.LoadOrEnv(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Observability.Logging.Level = "debug"
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "import")

	records, err := bankfeed.ReadFile(*file)
	if err != nil {
		logger.Error("failed to read statement", "file", *file, "error", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		logger.Info("statement is empty, nothing to do", "file", *file)
		return
	}

	repo, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	reconciler := reconcile.NewService(repo, matcher.Config{
		AmountTolerance: cfg.Reconcile.AmountTolerance,
		DateWindowDays:  cfg.Reconcile.DateWindowDays,
		MinConfidence:   cfg.Reconcile.MinConfidence,
	}, nil, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	label := *source
	if label == "" {
		label = *file
	}

	result, err := reconciler.RunBatch(ctx, *userID, records, reconcile.Options{
		Source: label,
		DryRun: *dryRun,
	})
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}

	logger.Info("import complete",
		"run_id", result.RunID,
		"dry_run", *dryRun,
		"processed", result.Processed,
		"matched", result.Matched,
		"stored", result.Stored,
		"potential", result.Potential,
		"errors", result.Errors,
	)

	if result.Errors > 0 {
		os.Exit(1)
	}
}
