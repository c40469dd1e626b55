package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pockettrack/backend/internal/domain/matcher"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

const testUser = "user-1"

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo storage.Repository, cfg matcher.Config) *Service {
	s := NewService(repo, cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return testNow }
	return s
}

func pendingManual(id string, amount float64, date time.Time) *storage.Transaction {
	return &storage.Transaction{
		ID:          id,
		UserID:      testUser,
		Description: "Groceries",
		Amount:      amount,
		Category:    "Food",
		Date:        date,
		Type:        storage.TypeExpense,
		Status:      storage.StatusPending,
		IsManual:    true,
		CreatedAt:   date,
	}
}

func activeRecurring(id string, amount float64, nextDue time.Time) *storage.RecurringTransaction {
	return &storage.RecurringTransaction{
		ID:          id,
		UserID:      testUser,
		Name:        "Netflix",
		Amount:      amount,
		Category:    "Entertainment",
		Type:        storage.TypeExpense,
		Frequency:   "monthly",
		IsActive:    true,
		StartDate:   nextDue.AddDate(0, -6, 0),
		NextDueDate: nextDue,
		CreatedAt:   nextDue.AddDate(0, -6, 0),
	}
}

func TestCandidates_ManualBeforeRecurring(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveRecurring(activeRecurring("rec-1", 15.49, testNow)))
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-1", 50.00, testNow.AddDate(0, 0, -2))))

	s := newTestService(repo, matcher.DefaultConfig())

	candidates, err := s.Candidates(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "tx-1", candidates[0].ID)
	assert.False(t, candidates[0].Recurring)

	assert.Equal(t, "recurring_rec-1", candidates[1].ID)
	assert.True(t, candidates[1].Recurring)
	assert.Equal(t, "rec-1", candidates[1].RecurringID)
}

func TestCandidates_ManualOldestFirst(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-new", 50.00, testNow)))
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-old", 50.00, testNow.AddDate(0, 0, -8))))

	s := newTestService(repo, matcher.DefaultConfig())

	candidates, err := s.Candidates(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "tx-old", candidates[0].ID)
	assert.Equal(t, "tx-new", candidates[1].ID)
}

func TestEffectiveDate_PicksCloserDate(t *testing.T) {
	def := activeRecurring("rec-1", 10, testNow.AddDate(0, 0, 2))

	// Next due in 2 days vs start 6 months ago: next due wins.
	assert.Equal(t, def.NextDueDate, effectiveDate(testNow, def))

	// Freshly created definition whose first due date is far out.
	def.StartDate = testNow.AddDate(0, 0, -1)
	def.NextDueDate = testNow.AddDate(0, 1, 0)
	assert.Equal(t, def.StartDate, effectiveDate(testNow, def))
}

func TestProcessBankTransaction_MatchesManual(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-1", 50.00, testNow.AddDate(0, 0, -2))))

	s := newTestService(repo, matcher.DefaultConfig())

	outcome, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID:       "bank-1",
		Name:     "WHOLEFDS GROCERIES",
		Amount:   -50.00,
		Category: "Food",
		Date:     testNow,
	})
	require.NoError(t, err)

	assert.True(t, outcome.Matched)
	assert.False(t, outcome.Stored)
	assert.Equal(t, "tx-1", outcome.TransactionID)
	require.NotNil(t, outcome.Match)
	assert.Equal(t, "tx-1", outcome.Match.CandidateID)

	// The manual transaction flipped to paid with the bank back-reference;
	// no separate transaction was stored for the bank record.
	tx, err := repo.GetTransaction(testUser, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusPaid, tx.Status)
	assert.Equal(t, "bank-1", tx.BankTransactionID)
	require.NotNil(t, tx.MatchedAt)
	assert.Equal(t, testNow, *tx.MatchedAt)

	stored, err := repo.GetTransaction(testUser, "bank-1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestProcessBankTransaction_FirstFitNotBestFit(t *testing.T) {
	repo := storage.NewMockRepository()
	// Older candidate is a weaker match (8 days off) but is scanned first.
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-weak", 50.00, testNow.AddDate(0, 0, -8))))
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-strong", 50.00, testNow)))

	s := newTestService(repo, matcher.DefaultConfig())

	outcome, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Name: "Groceries", Amount: -50.00, Category: "Food", Date: testNow,
	})
	require.NoError(t, err)

	require.True(t, outcome.Matched)
	assert.Equal(t, "tx-weak", outcome.Match.CandidateID)

	strong, err := repo.GetTransaction(testUser, "tx-strong")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusPending, strong.Status)
}

func TestProcessBankTransaction_ManualWinsOverRecurring(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveRecurring(activeRecurring("rec-1", 50.00, testNow)))
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-1", 50.00, testNow)))

	s := newTestService(repo, matcher.DefaultConfig())

	outcome, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Name: "Groceries", Amount: -50.00, Category: "Food", Date: testNow,
	})
	require.NoError(t, err)

	require.True(t, outcome.Matched)
	assert.Equal(t, "tx-1", outcome.Match.CandidateID)
	assert.True(t, repo.MarkMatchedCalled)
	assert.False(t, repo.AdvanceRecurringCalled)
}

func TestProcessBankTransaction_RecurringMaterializes(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveRecurring(activeRecurring("rec-1", 15.49, testNow)))

	s := newTestService(repo, matcher.DefaultConfig())

	outcome, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Name: "NETFLIX.COM", Amount: -15.49, Category: "Entertainment", Date: testNow,
	})
	require.NoError(t, err)

	require.True(t, outcome.Matched)
	assert.Equal(t, "recurring_rec-1", outcome.Match.CandidateID)

	// Exactly one transaction materialized, already paid.
	require.True(t, repo.SaveTransactionCalled)
	tx := repo.LastSavedTransaction
	require.NotNil(t, tx)
	assert.Equal(t, outcome.TransactionID, tx.ID)
	assert.Equal(t, "Netflix", tx.Description)
	assert.Equal(t, 15.49, tx.Amount)
	assert.Equal(t, storage.StatusPaid, tx.Status)
	assert.Equal(t, "rec-1", tx.RecurringTransactionID)
	assert.Equal(t, "bank-1", tx.BankTransactionID)
	assert.False(t, tx.IsManual)
	require.NotNil(t, tx.MatchedAt)

	// The schedule advanced one period.
	def, err := repo.GetRecurring(testUser, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 1, 0), def.NextDueDate)
	assert.Equal(t, 1, def.TotalOccurrences)
	require.NotNil(t, def.LastGeneratedAt)
	assert.Equal(t, testNow, *def.LastGeneratedAt)
}

func TestProcessBankTransaction_NoCandidatesStoresExpense(t *testing.T) {
	repo := storage.NewMockRepository()
	s := newTestService(repo, matcher.DefaultConfig())

	outcome, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Name: "Coffee Shop", Amount: -4.75, Category: "Food", Date: testNow,
	})
	require.NoError(t, err)

	assert.False(t, outcome.Matched)
	assert.True(t, outcome.Stored)

	tx, err := repo.GetTransaction(testUser, "bank-1")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, storage.TypeExpense, tx.Type)
	assert.Equal(t, 4.75, tx.Amount)
	assert.Equal(t, storage.StatusPaid, tx.Status)
	assert.False(t, tx.IsManual)
}

func TestProcessBankTransaction_PositiveAmountStoredAsIncome(t *testing.T) {
	repo := storage.NewMockRepository()
	s := newTestService(repo, matcher.DefaultConfig())

	_, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Name: "Payroll", Amount: 2500.00, Date: testNow,
	})
	require.NoError(t, err)

	tx, err := repo.GetTransaction(testUser, "bank-1")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, storage.TypeIncome, tx.Type)
	assert.Equal(t, 2500.00, tx.Amount)
}

func TestProcessBankTransaction_SubThresholdStoresPotential(t *testing.T) {
	repo := storage.NewMockRepository()
	// 10 days off with no category or description overlap scores 75.
	tx := pendingManual("tx-1", 50.00, testNow.AddDate(0, 0, -10))
	tx.Category = "Food"
	tx.Description = "Groceries"
	require.NoError(t, repo.SaveTransaction(tx))

	cfg := matcher.DefaultConfig()
	cfg.MinConfidence = 80

	s := newTestService(repo, cfg)

	outcome, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Name: "ACME", Amount: -50.00, Category: "Misc", Date: testNow,
	})
	require.NoError(t, err)

	assert.False(t, outcome.Matched)
	assert.True(t, outcome.Stored)
	assert.True(t, outcome.PotentialStored)

	matches, err := repo.ListPotentialMatches(testUser)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "tx-1", matches[0].ManualTransactionID)
	assert.Equal(t, "bank-1", matches[0].BankTransactionID)
	assert.Equal(t, 75.0, matches[0].Confidence)

	// The bank transaction was still stored normally.
	stored, err := repo.GetTransaction(testUser, "bank-1")
	require.NoError(t, err)
	require.NotNil(t, stored)

	// The candidate stays pending.
	cand, err := repo.GetTransaction(testUser, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusPending, cand.Status)
}

func TestProcessBankTransaction_PotentialSaveFailureIsNotFatal(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.SavePotentialMatchErr = errors.New("disk full")
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-1", 50.00, testNow.AddDate(0, 0, -10))))

	cfg := matcher.DefaultConfig()
	cfg.MinConfidence = 80

	s := newTestService(repo, cfg)

	outcome, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Name: "ACME", Amount: -50.00, Date: testNow,
	})
	require.NoError(t, err)

	assert.True(t, outcome.Stored)
	assert.False(t, outcome.PotentialStored)

	stored, err := repo.GetTransaction(testUser, "bank-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestProcessBankTransaction_SkipsNonPendingCandidate(t *testing.T) {
	repo := storage.NewMockRepository()
	// Already paid but still unreferenced, so it shows up as a candidate;
	// the conditional update refuses it and the scan moves on.
	stale := pendingManual("tx-stale", 50.00, testNow.AddDate(0, 0, -1))
	stale.Status = storage.StatusPaid
	require.NoError(t, repo.SaveTransaction(stale))
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-live", 50.00, testNow)))

	s := newTestService(repo, matcher.DefaultConfig())

	outcome, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Name: "Groceries", Amount: -50.00, Category: "Food", Date: testNow,
	})
	require.NoError(t, err)

	require.True(t, outcome.Matched)
	assert.Equal(t, "tx-live", outcome.Match.CandidateID)
}

func TestProcessBankTransaction_CandidateListFailure(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.ListManualErr = errors.New("db gone")

	s := newTestService(repo, matcher.DefaultConfig())

	_, err := s.ProcessBankTransaction(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Amount: -10, Date: testNow,
	})
	assert.Error(t, err)
}

func TestPreview_NoWrites(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-1", 50.00, testNow)))
	repo.SaveTransactionCalled = false
	repo.MarkMatchedCalled = false

	s := newTestService(repo, matcher.DefaultConfig())

	match, err := s.Preview(context.Background(), testUser, matcher.BankTransaction{
		ID: "bank-1", Name: "Groceries", Amount: -50.00, Category: "Food", Date: testNow,
	})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "tx-1", match.CandidateID)

	assert.False(t, repo.SaveTransactionCalled)
	assert.False(t, repo.MarkMatchedCalled)

	tx, err := repo.GetTransaction(testUser, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusPending, tx.Status)
}

func TestManualMatch(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-1", 50.00, testNow)))
	require.NoError(t, repo.SavePotentialMatch(&storage.PotentialMatch{
		ID: "pm-1", UserID: testUser, ManualTransactionID: "tx-1", BankTransactionID: "bank-1",
	}))

	s := newTestService(repo, matcher.DefaultConfig())

	require.NoError(t, s.ManualMatch(context.Background(), testUser, "tx-1", "bank-1"))

	tx, err := repo.GetTransaction(testUser, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusPaid, tx.Status)
	assert.Equal(t, "bank-1", tx.BankTransactionID)

	matches, err := repo.ListPotentialMatches(testUser)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestManualMatch_NotPending(t *testing.T) {
	repo := storage.NewMockRepository()
	paid := pendingManual("tx-1", 50.00, testNow)
	paid.Status = storage.StatusPaid
	require.NoError(t, repo.SaveTransaction(paid))

	s := newTestService(repo, matcher.DefaultConfig())

	err := s.ManualMatch(context.Background(), testUser, "tx-1", "bank-1")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestDismissMatch_Idempotent(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SavePotentialMatch(&storage.PotentialMatch{
		ID: "pm-1", UserID: testUser, ManualTransactionID: "tx-1",
	}))

	s := newTestService(repo, matcher.DefaultConfig())

	require.NoError(t, s.DismissMatch(context.Background(), testUser, "pm-1"))
	require.NoError(t, s.DismissMatch(context.Background(), testUser, "pm-1"))

	matches, err := s.PotentialMatches(context.Background(), testUser)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRunBatch_CountsOutcomes(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-1", 50.00, testNow)))

	s := newTestService(repo, matcher.DefaultConfig())

	records := []matcher.BankTransaction{
		{ID: "bank-1", Name: "Groceries", Amount: -50.00, Category: "Food", Date: testNow},
		{ID: "bank-2", Name: "Coffee", Amount: -4.75, Category: "Food", Date: testNow},
	}

	result, err := s.RunBatch(context.Background(), testUser, records, Options{Source: "statement.csv"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Stored)
	assert.Equal(t, 0, result.Errors)

	runs, err := repo.ListImportRuns(testUser, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, "statement.csv", runs[0].Source)
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, 2, runs[0].Processed)
	assert.Equal(t, 1, runs[0].Matched)
}

func TestRunBatch_OneBadRecordDoesNotAbort(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-1", 50.00, testNow)))
	// Storing unmatched records fails; matching does not touch SaveTransaction.
	repo.SaveTransactionErr = errors.New("disk full")

	s := newTestService(repo, matcher.DefaultConfig())

	records := []matcher.BankTransaction{
		{ID: "bank-bad", Name: "Unknown", Amount: -99.99, Date: testNow},
		{ID: "bank-good", Name: "Groceries", Amount: -50.00, Category: "Food", Date: testNow},
	}

	result, err := s.RunBatch(context.Background(), testUser, records, Options{Source: "statement.csv"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Errors)

	runs, err := repo.ListImportRuns(testUser, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Errors)
}

func TestRunBatch_DryRunWritesNothing(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveTransaction(pendingManual("tx-1", 50.00, testNow)))
	repo.SaveTransactionCalled = false

	s := newTestService(repo, matcher.DefaultConfig())

	records := []matcher.BankTransaction{
		{ID: "bank-1", Name: "Groceries", Amount: -50.00, Category: "Food", Date: testNow},
		{ID: "bank-2", Name: "Coffee", Amount: -4.75, Date: testNow},
	}

	result, err := s.RunBatch(context.Background(), testUser, records, Options{Source: "statement.csv", DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Stored)

	assert.False(t, repo.SaveTransactionCalled)
	assert.False(t, repo.MarkMatchedCalled)

	runs, err := repo.ListImportRuns(testUser, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].DryRun)
}

func TestRunBatch_StartRunFailure(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.StartImportRunErr = errors.New("db gone")

	s := newTestService(repo, matcher.DefaultConfig())

	_, err := s.RunBatch(context.Background(), testUser, nil, Options{Source: "x"})
	assert.Error(t, err)
}
