package reconcile

import (
	"context"
	"fmt"

	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

// ManualMatch applies a user-confirmed match between a manual
// transaction and a bank transaction. Confirmation is authoritative, so
// it carries confidence 100; the same conditional pending->paid update
// as the automatic path still applies.
func (s *Service) ManualMatch(ctx context.Context, userID, manualTransactionID, bankTransactionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ok, err := s.repo.MarkMatched(userID, manualTransactionID, bankTransactionID, s.now())
	if err != nil {
		return fmt.Errorf("confirm match: %w", err)
	}
	if !ok {
		return ErrNotPending
	}

	// The confirmed transaction no longer needs review entries.
	if err := s.repo.ClearPotentialMatchesFor(userID, manualTransactionID); err != nil {
		s.logger.Error("failed to clear potential matches",
			"user_id", userID,
			"manual_transaction_id", manualTransactionID,
			"error", err,
		)
	}

	s.logger.Info("manual match confirmed",
		"user_id", userID,
		"manual_transaction_id", manualTransactionID,
		"bank_transaction_id", bankTransactionID,
		"confidence", 100,
	)
	return nil
}

// PotentialMatches lists sub-threshold matches awaiting review.
func (s *Service) PotentialMatches(ctx context.Context, userID string) ([]*storage.PotentialMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.repo.ListPotentialMatches(userID)
}

// DismissMatch removes a stored potential match. Dismissing twice is a
// no-op the second time.
func (s *Service) DismissMatch(ctx context.Context, userID, matchID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.repo.DismissPotentialMatch(userID, matchID)
}
