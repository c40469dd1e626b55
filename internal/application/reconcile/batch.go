package reconcile

import (
	"context"
	"fmt"

	"github.com/pockettrack/backend/internal/domain/matcher"
)

// RunBatch processes a whole statement of bank transactions, recording
// an import run. One bad record never aborts the batch; failures are
// counted and the rest of the statement continues.
//
// Dry runs are recorded too, but evaluate each record without writing
// any transaction state.
func (s *Service) RunBatch(ctx context.Context, userID string, records []matcher.BankTransaction, opts Options) (*BatchResult, error) {
	runID, err := s.repo.StartImportRun(userID, opts.Source, opts.DryRun)
	if err != nil {
		return nil, fmt.Errorf("start import run: %w", err)
	}

	result := &BatchResult{RunID: runID}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if opts.DryRun {
			match, err := s.Preview(ctx, userID, record)
			if err != nil {
				result.Errors++
				s.metrics.IncrImportError()
				s.logger.Error("preview failed",
					"user_id", userID,
					"bank_transaction_id", record.ID,
					"error", err,
				)
				continue
			}
			result.Processed++
			if match != nil {
				result.Matched++
			} else {
				result.Stored++
			}
			continue
		}

		outcome, err := s.ProcessBankTransaction(ctx, userID, record)
		if err != nil {
			result.Errors++
			s.metrics.IncrImportError()
			s.logger.Error("failed to process bank transaction",
				"user_id", userID,
				"bank_transaction_id", record.ID,
				"error", err,
			)
			continue
		}

		result.Processed++
		if outcome.Matched {
			result.Matched++
		} else {
			result.Stored++
		}
		if outcome.PotentialStored {
			result.Potential++
		}
	}

	if err := s.repo.CompleteImportRun(runID, result.Processed, result.Matched, result.Stored, result.Potential, result.Errors); err != nil {
		return result, fmt.Errorf("complete import run: %w", err)
	}

	s.logger.Info("import batch finished",
		"user_id", userID,
		"source", opts.Source,
		"dry_run", opts.DryRun,
		"processed", result.Processed,
		"matched", result.Matched,
		"stored", result.Stored,
		"potential", result.Potential,
		"errors", result.Errors,
	)

	return result, nil
}
