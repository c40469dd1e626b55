// Package reconcile implements the transaction reconciliation flow:
// incoming bank transactions are matched against pending manual
// transactions and active recurring definitions, and either consume a
// candidate or get stored as normal transactions.
//
// The matching policy is first-fit, not best-fit: candidates are
// evaluated in collector order (manual transactions before virtual
// recurring ones) and the first one clearing the confidence threshold
// wins. This is a deliberate simplicity trade-off, not an optimal
// assignment algorithm.
package reconcile

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pockettrack/backend/internal/domain/matcher"
	"github.com/pockettrack/backend/internal/domain/recurring"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
	"github.com/pockettrack/backend/internal/observability"
)

// ProcessBankTransaction reconciles one incoming bank transaction
// against the user's pending candidates.
//
// The first candidate that passes both hard filters and clears the
// confidence threshold is applied and the scan stops. The first
// sub-threshold match seen is recorded for user review. When nothing
// qualifies, the bank transaction is stored as a normal transaction.
func (s *Service) ProcessBankTransaction(ctx context.Context, userID string, bank matcher.BankTransaction) (Outcome, error) {
	candidates, err := s.Candidates(ctx, userID)
	if err != nil {
		return Outcome{}, fmt.Errorf("collect candidates: %w", err)
	}

	var subThreshold *matcher.Match
	for _, cand := range candidates {
		match := s.matcher.Evaluate(cand, bank)
		if match == nil {
			continue
		}

		if !s.matcher.Qualifies(match) {
			if subThreshold == nil {
				subThreshold = match
			}
			continue
		}

		txID, applied, err := s.applyMatch(userID, cand, bank, match)
		if err != nil {
			return Outcome{}, fmt.Errorf("apply match to %s: %w", cand.ID, err)
		}
		if !applied {
			// Lost the race to a concurrent import: the candidate is no
			// longer pending. Keep scanning.
			s.logger.Warn("candidate no longer pending, skipping",
				"user_id", userID,
				"candidate_id", cand.ID,
				"bank_transaction_id", bank.ID,
			)
			continue
		}

		s.metrics.IncrOutcome(observability.OutcomeMatched)
		s.logger.Info("matched bank transaction",
			"user_id", userID,
			"candidate_id", cand.ID,
			"bank_transaction_id", bank.ID,
			"confidence", match.Confidence,
			"date_diff_days", match.DateDiff,
		)

		return Outcome{Matched: true, Match: match, TransactionID: txID}, nil
	}

	outcome := Outcome{Stored: true}

	if subThreshold != nil {
		pm := &storage.PotentialMatch{
			ID:                  uuid.NewString(),
			UserID:              userID,
			ManualTransactionID: subThreshold.CandidateID,
			BankTransactionID:   bank.ID,
			MatchType:           string(subThreshold.Type),
			Confidence:          subThreshold.Confidence,
			CreatedAt:           s.now(),
		}
		if err := s.repo.SavePotentialMatch(pm); err != nil {
			// Review is best-effort; the import itself must not fail on it.
			s.logger.Error("failed to store potential match",
				"user_id", userID,
				"candidate_id", subThreshold.CandidateID,
				"error", err,
			)
		} else {
			s.metrics.IncrOutcome(observability.OutcomePotential)
			outcome.PotentialStored = true
		}
	}

	tx := bankToTransaction(userID, bank, s.now())
	if err := s.repo.SaveTransaction(tx); err != nil {
		return Outcome{}, fmt.Errorf("store bank transaction: %w", err)
	}

	s.metrics.IncrOutcome(observability.OutcomeStored)
	s.logger.Debug("stored unmatched bank transaction",
		"user_id", userID,
		"bank_transaction_id", bank.ID,
		"transaction_id", tx.ID,
	)

	outcome.TransactionID = tx.ID
	return outcome, nil
}

// Preview evaluates candidates without writing anything, returning the
// match that would be applied, or nil.
func (s *Service) Preview(ctx context.Context, userID string, bank matcher.BankTransaction) (*matcher.Match, error) {
	candidates, err := s.Candidates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("collect candidates: %w", err)
	}

	for _, cand := range candidates {
		if match := s.matcher.Evaluate(cand, bank); s.matcher.Qualifies(match) {
			return match, nil
		}
	}
	return nil, nil
}

// applyMatch performs the state transition for a qualifying match.
// Returns the transaction the match landed on and whether it was applied
// (false when a manual candidate lost the pending->paid race).
func (s *Service) applyMatch(userID string, cand matcher.Candidate, bank matcher.BankTransaction, match *matcher.Match) (string, bool, error) {
	now := s.now()

	if !cand.Recurring {
		ok, err := s.repo.MarkMatched(userID, cand.ID, bank.ID, now)
		return cand.ID, ok, err
	}

	def, err := s.repo.GetRecurring(userID, cand.RecurringID)
	if err != nil {
		return "", false, fmt.Errorf("load recurring definition: %w", err)
	}
	if def == nil {
		return "", false, fmt.Errorf("recurring definition %s not found", cand.RecurringID)
	}

	// Materialize the occurrence as a concrete, already-paid transaction.
	matchedAt := now
	tx := &storage.Transaction{
		ID:                     uuid.NewString(),
		UserID:                 userID,
		Description:            def.Name,
		Amount:                 def.Amount,
		Category:               def.Category,
		Date:                   now,
		Type:                   def.Type,
		Status:                 storage.StatusPaid,
		RecurringTransactionID: def.ID,
		BankTransactionID:      bank.ID,
		MatchedAt:              &matchedAt,
	}
	if err := s.repo.SaveTransaction(tx); err != nil {
		return "", false, fmt.Errorf("materialize recurring transaction: %w", err)
	}

	nextDue := recurring.NextAfter(def.NextDueDate, recurring.Frequency(def.Frequency))
	if err := s.repo.AdvanceRecurring(userID, def.ID, nextDue, now); err != nil {
		return "", false, fmt.Errorf("advance recurring schedule: %w", err)
	}

	return tx.ID, true, nil
}

// bankToTransaction converts an unmatched bank transaction for storage.
// Negative feed amounts are expenses, positive ones income; the stored
// amount is always positive.
func bankToTransaction(userID string, bank matcher.BankTransaction, now time.Time) *storage.Transaction {
	txType := storage.TypeIncome
	if bank.Amount < 0 {
		txType = storage.TypeExpense
	}

	id := bank.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &storage.Transaction{
		ID:                id,
		UserID:            userID,
		Description:       bank.Name,
		Amount:            math.Abs(bank.Amount),
		Category:          bank.Category,
		Date:              bank.Date,
		Type:              txType,
		Status:            storage.StatusPaid,
		BankTransactionID: bank.ID,
		CreatedAt:         now,
	}
}
