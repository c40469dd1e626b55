package reconcile

import (
	"errors"
	"log/slog"
	"time"

	"github.com/pockettrack/backend/internal/domain/matcher"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
	"github.com/pockettrack/backend/internal/observability"
)

// recurringPrefix marks virtual candidates projected from recurring
// definitions; the real definition ID follows the prefix.
const recurringPrefix = "recurring_"

// ErrNotPending is returned when confirming a match against a
// transaction that is no longer pending.
var ErrNotPending = errors.New("transaction is not pending")

// Outcome is the typed result of processing one bank transaction.
// Exactly one of Matched or Stored is true.
type Outcome struct {
	// Matched means a candidate consumed the bank transaction; it must
	// not be separately persisted.
	Matched bool
	// Stored means the bank transaction was persisted as a normal,
	// unmatched transaction.
	Stored bool
	// PotentialStored means a sub-threshold match was recorded for user
	// review alongside the stored transaction.
	PotentialStored bool

	Match *matcher.Match
	// TransactionID is the transaction the outcome landed on: the matched
	// manual transaction, the materialized recurring transaction, or the
	// newly stored bank transaction.
	TransactionID string
}

// Options configures a batch import run.
type Options struct {
	// Source labels the run (e.g. the statement file name).
	Source string
	// DryRun evaluates matches without writing anything.
	DryRun bool
}

// BatchResult summarizes a batch import run.
type BatchResult struct {
	RunID     int64
	Processed int
	Matched   int
	Stored    int
	Potential int
	Errors    int
}

// Service runs the reconciliation flow: collect candidates, evaluate,
// apply the first qualifying match.
type Service struct {
	repo    storage.Repository
	matcher *matcher.Matcher
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a reconciliation service. metrics may be nil.
func NewService(repo storage.Repository, cfg matcher.Config, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:    repo,
		matcher: matcher.New(cfg),
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}
