package dto

import (
	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// TransactionListResponse wraps a transaction list.
type TransactionListResponse struct {
	Transactions []*storage.Transaction `json:"transactions"`
	Count        int                    `json:"count"`
}

// RecurringListResponse wraps a recurring definition list.
type RecurringListResponse struct {
	Recurring []*storage.RecurringTransaction `json:"recurring"`
	Count     int                             `json:"count"`
}

// MatchListResponse wraps a potential match list.
type MatchListResponse struct {
	Matches []*storage.PotentialMatch `json:"matches"`
	Count   int                       `json:"count"`
}

// ImportResultResponse summarizes one import batch.
type ImportResultResponse struct {
	RunID     int64 `json:"run_id"`
	DryRun    bool  `json:"dry_run"`
	Processed int   `json:"processed"`
	Matched   int   `json:"matched"`
	Stored    int   `json:"stored"`
	Potential int   `json:"potential"`
	Errors    int   `json:"errors"`
}

// ImportRunListResponse wraps historical import runs.
type ImportRunListResponse struct {
	Runs  []storage.ImportRun `json:"runs"`
	Count int                 `json:"count"`
}
