// Package budget aggregates stored transactions, recurring definitions
// and category limits into monthly budget summaries.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pockettrack/backend/internal/domain/allocation"
	"github.com/pockettrack/backend/internal/domain/recurring"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
	"github.com/pockettrack/backend/internal/observability"
)

const cacheName = "budget_summary"

// AllocationSettings configures how the spendable budget is derived from
// income. Percentages are 0-100.
type AllocationSettings struct {
	SavingsPct        float64          `json:"savings_pct"`
	DebtPct           float64          `json:"debt_pct"`
	GoalContributions float64          `json:"goal_contributions"`
	Flags             allocation.Flags `json:"flags"`
}

// CategorySummary is one category's month view.
type CategorySummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Limit      float64 `json:"limit"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	OverBudget bool    `json:"over_budget"`
	Overspend  float64 `json:"overspend,omitempty"`
}

// Summary is the monthly budget view.
type Summary struct {
	Month            string  `json:"month"` // YYYY-MM
	Income           float64 `json:"income"`
	Spent            float64 `json:"spent"`
	RecurringMonthly float64 `json:"recurring_monthly"`

	// TotalBudgetGross allocates from gross income, TotalBudgetNet from
	// income net of expenses. Clients pick whichever view they render.
	TotalBudgetGross float64 `json:"total_budget_gross"`
	TotalBudgetNet   float64 `json:"total_budget_net"`

	Categories []CategorySummary `json:"categories"`
}

// Service computes budget summaries with a short-lived cache in front of
// the aggregation queries.
type Service struct {
	repo    storage.Repository
	cache   *gocache.Cache
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a budget service. metrics may be nil.
func NewService(repo storage.Repository, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:    repo,
		cache:   gocache.New(time.Minute, 5*time.Minute),
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// MonthSummary computes the budget summary for the month containing the
// given time. Results are cached for a minute per user, month and
// allocation settings.
func (s *Service) MonthSummary(ctx context.Context, userID string, month time.Time, settings AllocationSettings) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := summaryKey(userID, month, settings)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit(cacheName)
		return cached.(*Summary), nil
	}
	s.metrics.IncrCacheMiss(cacheName)

	summary, err := s.computeSummary(userID, month, settings)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(key, summary)
	return summary, nil
}

// Invalidate drops all cached summaries for a user, called after writes
// that change the underlying aggregates.
func (s *Service) Invalidate(userID string) {
	prefix := userID + "|"
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}

func (s *Service) computeSummary(userID string, month time.Time, settings AllocationSettings) (*Summary, error) {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	income, err := s.repo.SumIncome(userID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("sum income: %w", err)
	}

	spending, err := s.repo.SpendingByCategory(userID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}

	var totalSpent float64
	for _, amount := range spending {
		totalSpent += amount
	}

	recurringExpense, recurringIncome, err := s.recurringMonthlyTotals(userID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("recurring monthly totals: %w", err)
	}

	// Projected recurring income counts toward the month's income even
	// before the bank feed confirms it.
	totalIncome := income + recurringIncome

	categories, err := s.repo.ListBudgetCategories(userID)
	if err != nil {
		return nil, fmt.Errorf("list budget categories: %w", err)
	}

	summaries := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		spent := spending[strings.ToLower(c.Name)]
		rem := allocation.CategoryRemaining(c.MonthlyLimit, spent)
		summaries = append(summaries, CategorySummary{
			ID:         c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Limit:      c.MonthlyLimit,
			Spent:      spent,
			Remaining:  rem.Amount,
			OverBudget: rem.OverBudget,
			Overspend:  rem.Overspend,
		})
	}

	return &Summary{
		Month:            monthStart.Format("2006-01"),
		Income:           totalIncome,
		Spent:            totalSpent,
		RecurringMonthly: recurringExpense,
		TotalBudgetGross: allocation.TotalBudgetGross(totalIncome,
			settings.SavingsPct, settings.DebtPct, settings.GoalContributions, settings.Flags),
		TotalBudgetNet: allocation.TotalBudgetNet(totalIncome, totalSpent,
			settings.SavingsPct, settings.DebtPct, settings.GoalContributions, settings.Flags),
		Categories: summaries,
	}, nil
}

// recurringMonthlyTotals sums the monthly-equivalent amounts of recurring
// definitions eligible for the month (started before the month ends and
// not end-dated before it begins), split by type: expense defs feed the
// recurring spend tally, income defs feed the month's income.
func (s *Service) recurringMonthlyTotals(userID string, monthStart, monthEnd time.Time) (expense, income float64, err error) {
	defs, err := s.repo.ListActiveRecurring(userID)
	if err != nil {
		return 0, 0, err
	}

	for _, def := range defs {
		if !def.StartDate.IsZero() && !def.StartDate.Before(monthEnd) {
			continue
		}
		if def.EndDate != nil && def.EndDate.Before(monthStart) {
			continue
		}

		monthly := recurring.MonthlyEquivalent(def.Amount, recurring.Frequency(def.Frequency))
		if def.Type == storage.TypeIncome {
			income += monthly
		} else {
			expense += monthly
		}
	}
	return expense, income, nil
}

func summaryKey(userID string, month time.Time, settings AllocationSettings) string {
	return fmt.Sprintf("%s|%s|%.2f|%.2f|%.2f|%t%t%t",
		userID, month.Format("2006-01"),
		settings.SavingsPct, settings.DebtPct, settings.GoalContributions,
		settings.Flags.IncludeSavings, settings.Flags.IncludeDebt, settings.Flags.IncludeGoals)
}
