package storage

import "time"

// Transaction statuses. Status is only meaningful for manual
// transactions; bank-originated and materialized transactions are stored
// as paid.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a stored transaction, either entered by the user
// (IsManual), imported from the bank feed, or materialized from a
// recurring definition.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"` // positive, currency-agnostic
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	IsManual    bool      `json:"is_manual"`

	// Back-references set when the transaction is matched.
	BankTransactionID      string     `json:"bank_transaction_id,omitempty"`
	RecurringTransactionID string     `json:"recurring_transaction_id,omitempty"`
	MatchedAt              *time.Time `json:"matched_at,omitempty"`
	CancelledAt            *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// RecurringTransaction is a user-configured template that projects
// expected future transactions (e.g. "Netflix, $15/month").
type RecurringTransaction struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Name             string     `json:"name"`
	Amount           float64    `json:"amount"`
	Category         string     `json:"category"`
	Type             string     `json:"type"`
	Frequency        string     `json:"frequency"` // weekly|biweekly|monthly
	IsActive         bool       `json:"is_active"`
	StartDate        time.Time  `json:"start_date"`
	NextDueDate      time.Time  `json:"next_due_date"`
	LastGeneratedAt  *time.Time `json:"last_generated_at,omitempty"`
	TotalOccurrences int        `json:"total_occurrences"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// PotentialMatch is a sub-threshold match stored for user review.
type PotentialMatch struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	ManualTransactionID string    `json:"manual_transaction_id"`
	BankTransactionID   string    `json:"bank_transaction_id"`
	MatchType           string    `json:"match_type"` // auto|manual
	Confidence          float64   `json:"confidence"` // 0-100
	CreatedAt           time.Time `json:"created_at"`
}

// BudgetCategory is a user-owned spending category with a monthly limit.
// Protected categories are seeded defaults that cannot be deleted or
// renamed; the name is the aggregation key, matched case-insensitively.
type BudgetCategory struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	MonthlyLimit float64   `json:"monthly_limit"`
	Color        string    `json:"color"`
	Protected    bool      `json:"protected"`
	CreatedAt    time.Time `json:"created_at"`
}

// ImportRun records one bank-feed import batch.
type ImportRun struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	Source      string     `json:"source"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DryRun      bool       `json:"dry_run"`
	Processed   int        `json:"processed"`
	Matched     int        `json:"matched"`
	Stored      int        `json:"stored"`
	Potential   int        `json:"potential"`
	Errors      int        `json:"errors"`
	Status      string     `json:"status"` // running|completed
}

// defaultCategories are seeded once per user and protected from deletion.
var defaultCategories = []BudgetCategory{
	{Name: "Food", MonthlyLimit: 0, Color: "#4CAF50", Protected: true},
	{Name: "Transportation", MonthlyLimit: 0, Color: "#2196F3", Protected: true},
	{Name: "Housing", MonthlyLimit: 0, Color: "#9C27B0", Protected: true},
	{Name: "Utilities", MonthlyLimit: 0, Color: "#FF9800", Protected: true},
	{Name: "Entertainment", MonthlyLimit: 0, Color: "#E91E63", Protected: true},
	{Name: "Health", MonthlyLimit: 0, Color: "#00BCD4", Protected: true},
	{Name: "Other", MonthlyLimit: 0, Color: "#607D8B", Protected: true},
}
