package storage

import "time"

// Repository defines the complete storage interface. All data is scoped
// per user; implementations can be swapped (SQLite here, an in-memory
// mock in tests).
type Repository interface {
	TransactionRepository
	RecurringRepository
	PotentialMatchRepository
	BudgetCategoryRepository
	ImportRunRepository
	Close() error
}

// TransactionRepository handles stored transactions.
type TransactionRepository interface {
	// SaveTransaction inserts or replaces a transaction.
	SaveTransaction(tx *Transaction) error

	// GetTransaction retrieves one transaction, nil when absent.
	GetTransaction(userID, id string) (*Transaction, error)

	// ListTransactions returns transactions matching the filters, newest
	// first.
	ListTransactions(userID string, filters TransactionFilters) ([]*Transaction, error)

	// ListManualUnmatched returns the user's manual transactions that have
	// no bank back-reference yet, oldest first. This is the manual half of
	// the matching candidate set.
	ListManualUnmatched(userID string) ([]*Transaction, error)

	// MarkMatched flips a manual transaction pending->paid and records the
	// bank back-reference. The update is conditional: it reports false
	// when the transaction was not pending anymore, so two concurrent
	// imports cannot both consume the same candidate.
	MarkMatched(userID, id, bankTransactionID string, at time.Time) (bool, error)

	// CancelTransaction flips pending->cancelled; false when not pending.
	CancelTransaction(userID, id string, at time.Time) (bool, error)

	// SumIncome totals paid income transactions dated in [from, to).
	SumIncome(userID string, from, to time.Time) (float64, error)

	// SpendingByCategory totals paid expense transactions dated in
	// [from, to), keyed by lower-cased category name.
	SpendingByCategory(userID string, from, to time.Time) (map[string]float64, error)
}

// TransactionFilters narrows ListTransactions results.
type TransactionFilters struct {
	Status   string    // empty = all
	Type     string    // empty = all
	Category string    // empty = all, case-insensitive
	From     time.Time // zero = unbounded
	To       time.Time // zero = unbounded
	Limit    int       // 0 = default 50
	Offset   int
}

// RecurringRepository handles recurring transaction definitions.
type RecurringRepository interface {
	SaveRecurring(def *RecurringTransaction) error

	// GetRecurring retrieves one definition, nil when absent.
	GetRecurring(userID, id string) (*RecurringTransaction, error)

	ListRecurring(userID string) ([]*RecurringTransaction, error)

	// ListActiveRecurring returns only active definitions, insertion order.
	ListActiveRecurring(userID string) ([]*RecurringTransaction, error)

	// AdvanceRecurring moves a definition one period forward after a
	// successful match: new next-due date, occurrence count bumped,
	// generation timestamp recorded.
	AdvanceRecurring(userID, id string, nextDue, generatedAt time.Time) error

	// DeactivateRecurring flips IsActive off; false when already inactive
	// or absent.
	DeactivateRecurring(userID, id string) (bool, error)
}

// PotentialMatchRepository stores sub-threshold matches for user review.
type PotentialMatchRepository interface {
	SavePotentialMatch(pm *PotentialMatch) error

	ListPotentialMatches(userID string) ([]*PotentialMatch, error)

	// DismissPotentialMatch removes a stored match. Dismissing an absent
	// or already-dismissed match is a no-op.
	DismissPotentialMatch(userID, id string) error

	// ClearPotentialMatchesFor removes all stored matches referencing a
	// manual transaction, used after the user confirms a match.
	ClearPotentialMatchesFor(userID, manualTransactionID string) error
}

// BudgetCategoryRepository handles budget categories.
type BudgetCategoryRepository interface {
	// SeedDefaultCategories inserts the protected default set once per
	// user; calling it again is a no-op.
	SeedDefaultCategories(userID string) error

	SaveBudgetCategory(c *BudgetCategory) error

	ListBudgetCategories(userID string) ([]*BudgetCategory, error)

	// DeleteBudgetCategory removes a category. Protected categories are
	// refused with ErrProtectedCategory.
	DeleteBudgetCategory(userID, id string) error
}

// ImportRunRepository tracks bank-feed import batches.
type ImportRunRepository interface {
	// StartImportRun records the start of a batch and returns the run ID.
	StartImportRun(userID, source string, dryRun bool) (int64, error)

	// CompleteImportRun records the batch outcome counts.
	CompleteImportRun(runID int64, processed, matched, stored, potential, errors int) error

	// ListImportRuns returns recent runs, newest first.
	ListImportRuns(userID string, limit int) ([]ImportRun, error)
}
