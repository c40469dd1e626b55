package storage

import (
	"sort"
	"strings"
	"time"
)

// MockRepository is an in-memory implementation of Repository for
// testing. All data lives in maps keyed by user ID, making tests fast
// and isolated.
type MockRepository struct {
	transactions map[string][]*Transaction         // per user, insertion order
	recurring    map[string][]*RecurringTransaction
	matches      map[string][]*PotentialMatch
	categories   map[string][]*BudgetCategory
	runs         []*ImportRun
	nextRunID    int64

	// Hooks for test assertions
	SaveTransactionCalled    bool
	LastSavedTransaction     *Transaction
	SavePotentialMatchCalled bool
	LastSavedPotentialMatch  *PotentialMatch
	MarkMatchedCalled        bool
	AdvanceRecurringCalled   bool

	// Error injection for testing error paths
	SaveTransactionErr     error
	ListManualErr          error
	ListActiveRecurringErr error
	MarkMatchedErr         error
	SavePotentialMatchErr  error
	StartImportRunErr      error
	SumIncomeErr           error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty mock repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		transactions: make(map[string][]*Transaction),
		recurring:    make(map[string][]*RecurringTransaction),
		matches:      make(map[string][]*PotentialMatch),
		categories:   make(map[string][]*BudgetCategory),
		nextRunID:    1,
	}
}

// Close does nothing for the mock.
func (m *MockRepository) Close() error {
	return nil
}

// --- TransactionRepository ---

func (m *MockRepository) SaveTransaction(tx *Transaction) error {
	m.SaveTransactionCalled = true
	m.LastSavedTransaction = tx
	if m.SaveTransactionErr != nil {
		return m.SaveTransactionErr
	}

	copied := *tx
	for i, existing := range m.transactions[tx.UserID] {
		if existing.ID == tx.ID {
			m.transactions[tx.UserID][i] = &copied
			return nil
		}
	}
	m.transactions[tx.UserID] = append(m.transactions[tx.UserID], &copied)
	return nil
}

func (m *MockRepository) GetTransaction(userID, id string) (*Transaction, error) {
	for _, tx := range m.transactions[userID] {
		if tx.ID == id {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) ListTransactions(userID string, filters TransactionFilters) ([]*Transaction, error) {
	var out []*Transaction
	for _, tx := range m.transactions[userID] {
		if filters.Status != "" && tx.Status != filters.Status {
			continue
		}
		if filters.Type != "" && tx.Type != filters.Type {
			continue
		}
		if filters.Category != "" && !strings.EqualFold(tx.Category, filters.Category) {
			continue
		}
		if !filters.From.IsZero() && tx.Date.Before(filters.From) {
			continue
		}
		if !filters.To.IsZero() && !tx.Date.Before(filters.To) {
			continue
		}
		copied := *tx
		out = append(out, &copied)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	if filters.Offset > len(out) {
		return nil, nil
	}
	out = out[filters.Offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRepository) ListManualUnmatched(userID string) ([]*Transaction, error) {
	if m.ListManualErr != nil {
		return nil, m.ListManualErr
	}

	var out []*Transaction
	for _, tx := range m.transactions[userID] {
		if tx.IsManual && tx.BankTransactionID == "" {
			copied := *tx
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *MockRepository) MarkMatched(userID, id, bankTransactionID string, at time.Time) (bool, error) {
	m.MarkMatchedCalled = true
	if m.MarkMatchedErr != nil {
		return false, m.MarkMatchedErr
	}

	for _, tx := range m.transactions[userID] {
		if tx.ID == id && tx.IsManual && tx.Status == StatusPending {
			tx.Status = StatusPaid
			tx.BankTransactionID = bankTransactionID
			matchedAt := at
			tx.MatchedAt = &matchedAt
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) CancelTransaction(userID, id string, at time.Time) (bool, error) {
	for _, tx := range m.transactions[userID] {
		if tx.ID == id && tx.Status == StatusPending {
			tx.Status = StatusCancelled
			cancelledAt := at
			tx.CancelledAt = &cancelledAt
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) SumIncome(userID string, from, to time.Time) (float64, error) {
	if m.SumIncomeErr != nil {
		return 0, m.SumIncomeErr
	}

	var total float64
	for _, tx := range m.transactions[userID] {
		if tx.Type == TypeIncome && tx.Status == StatusPaid &&
			!tx.Date.Before(from) && tx.Date.Before(to) {
			total += tx.Amount
		}
	}
	return total, nil
}

func (m *MockRepository) SpendingByCategory(userID string, from, to time.Time) (map[string]float64, error) {
	spending := make(map[string]float64)
	for _, tx := range m.transactions[userID] {
		if tx.Type == TypeExpense && tx.Status == StatusPaid &&
			!tx.Date.Before(from) && tx.Date.Before(to) {
			spending[strings.ToLower(tx.Category)] += tx.Amount
		}
	}
	return spending, nil
}

// --- RecurringRepository ---

func (m *MockRepository) SaveRecurring(def *RecurringTransaction) error {
	copied := *def
	for i, existing := range m.recurring[def.UserID] {
		if existing.ID == def.ID {
			m.recurring[def.UserID][i] = &copied
			return nil
		}
	}
	m.recurring[def.UserID] = append(m.recurring[def.UserID], &copied)
	return nil
}

func (m *MockRepository) GetRecurring(userID, id string) (*RecurringTransaction, error) {
	for _, def := range m.recurring[userID] {
		if def.ID == id {
			copied := *def
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) ListRecurring(userID string) ([]*RecurringTransaction, error) {
	var out []*RecurringTransaction
	for _, def := range m.recurring[userID] {
		copied := *def
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockRepository) ListActiveRecurring(userID string) ([]*RecurringTransaction, error) {
	if m.ListActiveRecurringErr != nil {
		return nil, m.ListActiveRecurringErr
	}

	var out []*RecurringTransaction
	for _, def := range m.recurring[userID] {
		if def.IsActive {
			copied := *def
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockRepository) AdvanceRecurring(userID, id string, nextDue, generatedAt time.Time) error {
	m.AdvanceRecurringCalled = true
	for _, def := range m.recurring[userID] {
		if def.ID == id {
			def.NextDueDate = nextDue
			gen := generatedAt
			def.LastGeneratedAt = &gen
			def.TotalOccurrences++
			return nil
		}
	}
	return nil
}

func (m *MockRepository) DeactivateRecurring(userID, id string) (bool, error) {
	for _, def := range m.recurring[userID] {
		if def.ID == id && def.IsActive {
			def.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

// --- PotentialMatchRepository ---

func (m *MockRepository) SavePotentialMatch(pm *PotentialMatch) error {
	m.SavePotentialMatchCalled = true
	m.LastSavedPotentialMatch = pm
	if m.SavePotentialMatchErr != nil {
		return m.SavePotentialMatchErr
	}

	copied := *pm
	m.matches[pm.UserID] = append(m.matches[pm.UserID], &copied)
	return nil
}

func (m *MockRepository) ListPotentialMatches(userID string) ([]*PotentialMatch, error) {
	var out []*PotentialMatch
	for _, pm := range m.matches[userID] {
		copied := *pm
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockRepository) DismissPotentialMatch(userID, id string) error {
	kept := m.matches[userID][:0]
	for _, pm := range m.matches[userID] {
		if pm.ID != id {
			kept = append(kept, pm)
		}
	}
	m.matches[userID] = kept
	return nil
}

func (m *MockRepository) ClearPotentialMatchesFor(userID, manualTransactionID string) error {
	kept := m.matches[userID][:0]
	for _, pm := range m.matches[userID] {
		if pm.ManualTransactionID != manualTransactionID {
			kept = append(kept, pm)
		}
	}
	m.matches[userID] = kept
	return nil
}

// --- BudgetCategoryRepository ---

func (m *MockRepository) SeedDefaultCategories(userID string) error {
	for _, c := range m.categories[userID] {
		if c.Protected {
			return nil
		}
	}
	for _, c := range defaultCategories {
		seeded := c
		seeded.ID = "default-" + strings.ToLower(c.Name)
		seeded.UserID = userID
		seeded.CreatedAt = time.Now().UTC()
		m.categories[userID] = append(m.categories[userID], &seeded)
	}
	return nil
}

func (m *MockRepository) SaveBudgetCategory(c *BudgetCategory) error {
	copied := *c
	for i, existing := range m.categories[c.UserID] {
		if existing.ID == c.ID {
			m.categories[c.UserID][i] = &copied
			return nil
		}
	}
	m.categories[c.UserID] = append(m.categories[c.UserID], &copied)
	return nil
}

func (m *MockRepository) ListBudgetCategories(userID string) ([]*BudgetCategory, error) {
	var out []*BudgetCategory
	for _, c := range m.categories[userID] {
		copied := *c
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (m *MockRepository) DeleteBudgetCategory(userID, id string) error {
	for _, c := range m.categories[userID] {
		if c.ID == id && c.Protected {
			return ErrProtectedCategory
		}
	}
	kept := m.categories[userID][:0]
	for _, c := range m.categories[userID] {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	m.categories[userID] = kept
	return nil
}

// --- ImportRunRepository ---

func (m *MockRepository) StartImportRun(userID, source string, dryRun bool) (int64, error) {
	if m.StartImportRunErr != nil {
		return 0, m.StartImportRunErr
	}

	run := &ImportRun{
		ID:        m.nextRunID,
		UserID:    userID,
		Source:    source,
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
		Status:    "running",
	}
	m.nextRunID++
	m.runs = append(m.runs, run)
	return run.ID, nil
}

func (m *MockRepository) CompleteImportRun(runID int64, processed, matched, stored, potential, errors int) error {
	for _, run := range m.runs {
		if run.ID == runID {
			now := time.Now().UTC()
			run.CompletedAt = &now
			run.Processed = processed
			run.Matched = matched
			run.Stored = stored
			run.Potential = potential
			run.Errors = errors
			run.Status = "completed"
			return nil
		}
	}
	return nil
}

func (m *MockRepository) ListImportRuns(userID string, limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var out []ImportRun
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.runs[i].UserID == userID {
			out = append(out, *m.runs[i])
		}
	}
	return out, nil
}
