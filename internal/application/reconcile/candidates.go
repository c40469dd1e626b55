package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/pockettrack/backend/internal/domain/matcher"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

// Candidates builds the ordered matching candidate set for a user:
// manual transactions first, then virtual candidates for active
// recurring definitions. Order matters — the orchestrator is first-fit,
// so manual entries always get first shot at an incoming bank
// transaction.
func (s *Service) Candidates(ctx context.Context, userID string) ([]matcher.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manual, err := s.repo.ListManualUnmatched(userID)
	if err != nil {
		return nil, fmt.Errorf("list manual transactions: %w", err)
	}

	candidates := make([]matcher.Candidate, 0, len(manual))
	for _, tx := range manual {
		candidates = append(candidates, matcher.Candidate{
			ID:            tx.ID,
			Description:   tx.Description,
			Amount:        tx.Amount,
			Category:      tx.Category,
			EffectiveDate: tx.Date,
		})
	}

	defs, err := s.repo.ListActiveRecurring(userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring definitions: %w", err)
	}

	// No calendar eligibility filtering here: end-dated or future-dated
	// definitions still produce candidates. Month eligibility is a budget
	// aggregation concern, not a matching one.
	now := s.now()
	for _, def := range defs {
		candidates = append(candidates, matcher.Candidate{
			ID:            recurringPrefix + def.ID,
			Description:   def.Name,
			Amount:        def.Amount,
			Category:      def.Category,
			EffectiveDate: effectiveDate(now, def),
			Recurring:     true,
			RecurringID:   def.ID,
		})
	}

	return candidates, nil
}

// effectiveDate picks whichever of the definition's start date or next
// due date is closer to now. This tolerates both freshly created
// definitions (start date ahead of the first due date) and long-running
// ones.
func effectiveDate(now time.Time, def *storage.RecurringTransaction) time.Time {
	start := def.StartDate
	if start.IsZero() {
		start = def.CreatedAt
	}

	if absDuration(now.Sub(start)) <= absDuration(now.Sub(def.NextDueDate)) {
		return start
	}
	return def.NextDueDate
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
