// Package recurring holds the schedule arithmetic for recurring
// transaction definitions.
package recurring

import "time"

// Frequency is how often a recurring transaction occurs.
type Frequency string

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Biweekly, Monthly:
		return true
	}
	return false
}

// NextAfter returns the due date one period after from: weekly advances
// 7 days, biweekly 14 days, monthly one calendar month.
func NextAfter(from time.Time, f Frequency) time.Time {
	switch f {
	case Weekly:
		return from.AddDate(0, 0, 7)
	case Biweekly:
		return from.AddDate(0, 0, 14)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// MonthlyEquivalent projects a per-occurrence amount to a monthly
// figure: weekly counts four times, biweekly twice, monthly once.
func MonthlyEquivalent(amount float64, f Frequency) float64 {
	switch f {
	case Weekly:
		return amount * 4
	case Biweekly:
		return amount * 2
	default:
		return amount
	}
}
