// Package matcher decides whether a pending candidate and an incoming
// bank transaction denote the same real-world payment.
//
// Two hard filters gate every match:
//   - Amounts must agree within one cent (configurable)
//   - Dates must be within the configured window (default 14 days)
//
// Candidates that pass both get a confidence score built from a 70-point
// base plus bonuses for date proximity and category/description
// similarity.
//
// Example usage:
//
//	m := matcher.New(matcher.DefaultConfig())
//	match := m.Evaluate(candidate, bankTx)
//	if m.Qualifies(match) {
//		// Same payment
//	}
package matcher

import (
	"math"

	"github.com/pockettrack/backend/internal/domain/similarity"
)

const (
	baseConfidence    = 70.0
	categoryWeight    = 10.0
	descriptionWeight = 10.0
)

// Matcher evaluates candidates against incoming bank transactions.
type Matcher struct {
	config Config
}

// New creates a matcher with the given config.
func New(config Config) *Matcher {
	return &Matcher{config: config}
}

// Evaluate returns nil when either hard filter fails, otherwise a Match
// with confidence in [0, 100].
func (m *Matcher) Evaluate(cand Candidate, bank BankTransaction) *Match {
	// Small epsilon to handle floating point precision issues
	const epsilon = 0.0000001

	amountDiff := math.Abs(cand.Amount - math.Abs(bank.Amount))
	if amountDiff > m.config.AmountTolerance+epsilon {
		return nil
	}

	dateDiff := math.Abs(bank.Date.Sub(cand.EffectiveDate).Hours() / 24)
	if dateDiff > m.config.DateWindowDays {
		return nil
	}

	confidence := baseConfidence + dateBonus(dateDiff)
	confidence += categoryWeight * similarity.Category(cand.Category, bank.Category)
	confidence += descriptionWeight * similarity.Description(cand.Description, bank.Name)

	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	return &Match{
		CandidateID:       cand.ID,
		BankTransactionID: bank.ID,
		Type:              MatchTypeAuto,
		Confidence:        confidence,
		DateDiff:          dateDiff,
	}
}

// Qualifies reports whether a match clears the confidence threshold.
//
// With a 70-point base the threshold almost never rejects a
// filter-passing candidate. Kept as a safety net pending a product
// decision on whether a stricter base score was intended.
func (m *Matcher) Qualifies(match *Match) bool {
	return match != nil && match.Confidence >= m.config.MinConfidence
}

// dateBonus rewards date proximity on a step scale.
func dateBonus(days float64) float64 {
	switch {
	case days <= 1:
		return 20
	case days <= 3:
		return 15
	case days <= 7:
		return 10
	case days <= 14:
		return 5
	}
	return 0
}
