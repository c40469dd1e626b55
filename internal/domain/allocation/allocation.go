// Package allocation provides the budget allocation arithmetic shared by
// the budget views: total-budget derivation and per-category remaining
// amounts.
package allocation

// Flags selects which allocations are withheld from the spendable budget.
type Flags struct {
	IncludeSavings bool
	IncludeDebt    bool
	IncludeGoals   bool
}

// TotalBudgetGross derives the spendable budget from gross income:
// percentage allocations for savings and debt payoff come straight off
// income, then goal contributions are subtracted as a flat amount.
//
// Two formulas ship deliberately: older views allocate from gross income,
// newer ones from income net of expenses. Which one is correct is an open
// product question, so both are kept as distinct named functions.
func TotalBudgetGross(totalIncome, savingsPct, debtPct, goalContributions float64, flags Flags) float64 {
	return allocate(totalIncome, savingsPct, debtPct, goalContributions, flags)
}

// TotalBudgetNet subtracts expenses from income before applying the same
// allocation arithmetic as TotalBudgetGross.
func TotalBudgetNet(totalIncome, totalExpenses, savingsPct, debtPct, goalContributions float64, flags Flags) float64 {
	return allocate(totalIncome-totalExpenses, savingsPct, debtPct, goalContributions, flags)
}

func allocate(base, savingsPct, debtPct, goalContributions float64, flags Flags) float64 {
	total := base
	if flags.IncludeSavings {
		total -= base * savingsPct / 100
	}
	if flags.IncludeDebt {
		total -= base * debtPct / 100
	}
	if flags.IncludeGoals {
		total -= goalContributions
	}
	return total
}

// Remaining is what is left of a category's monthly limit.
type Remaining struct {
	// Amount is floored at zero for display.
	Amount float64
	// OverBudget flags a negative true remainder; Overspend carries the
	// overshoot as a positive number.
	OverBudget bool
	Overspend  float64
}

// CategoryRemaining computes the remaining budget for one category.
func CategoryRemaining(monthlyLimit, spent float64) Remaining {
	rem := monthlyLimit - spent
	if rem < 0 {
		return Remaining{Amount: 0, OverBudget: true, Overspend: -rem}
	}
	return Remaining{Amount: rem}
}
