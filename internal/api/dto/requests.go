package dto

import "time"

// CreateTransactionRequest creates a manual transaction.
type CreateTransactionRequest struct {
	Description string    `json:"description" binding:"required"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date" binding:"required"`
	Type        string    `json:"type" binding:"required,oneof=income expense"`
}

// CreateRecurringRequest creates a recurring transaction definition.
type CreateRecurringRequest struct {
	Name        string     `json:"name" binding:"required"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Category    string     `json:"category"`
	Type        string     `json:"type" binding:"required,oneof=income expense"`
	Frequency   string     `json:"frequency" binding:"required,oneof=weekly biweekly monthly"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	NextDueDate *time.Time `json:"next_due_date"`
	EndDate     *time.Time `json:"end_date"`
}

// ImportRequest submits a batch of bank transactions for reconciliation.
type ImportRequest struct {
	Source       string              `json:"source"`
	DryRun       bool                `json:"dry_run"`
	Transactions []ImportTransaction `json:"transactions" binding:"required,min=1,dive"`
}

// ImportTransaction is one bank transaction in an import request.
// Negative amounts are debits, positive ones credits.
type ImportTransaction struct {
	TransactionID string    `json:"transaction_id" binding:"required"`
	Name          string    `json:"name" binding:"required"`
	Amount        float64   `json:"amount" binding:"required"`
	Category      string    `json:"category"`
	Date          time.Time `json:"date" binding:"required"`
}

// ConfirmMatchRequest confirms a suggested match.
type ConfirmMatchRequest struct {
	ManualTransactionID string `json:"manual_transaction_id" binding:"required"`
	BankTransactionID   string `json:"bank_transaction_id" binding:"required"`
}

// CreateBudgetCategoryRequest creates or updates a budget category.
type CreateBudgetCategoryRequest struct {
	Name         string  `json:"name" binding:"required"`
	MonthlyLimit float64 `json:"monthly_limit" binding:"gte=0"`
	Color        string  `json:"color"`
}
