package matcher

import "time"

// BankTransaction is an incoming transaction from the bank feed.
// Amounts follow bank-feed convention: negative for money leaving the
// account, positive for money coming in.
type BankTransaction struct {
	ID       string
	Name     string
	Amount   float64
	Category string
	Date     time.Time
}

// Candidate is a pending transaction eligible for matching: either a
// manually entered transaction or a virtual candidate projected from an
// active recurring definition.
type Candidate struct {
	ID            string
	Description   string
	Amount        float64 // always positive
	Category      string
	EffectiveDate time.Time
	Recurring     bool
	RecurringID   string
}

// MatchType distinguishes automatic matches from user confirmations.
type MatchType string

const (
	MatchTypeAuto   MatchType = "auto"
	MatchTypeManual MatchType = "manual"
)

// Match is the result of evaluating one candidate against one bank
// transaction. It is ephemeral: only sub-threshold matches are persisted,
// as potential matches awaiting user review.
type Match struct {
	CandidateID       string
	BankTransactionID string
	Type              MatchType
	Confidence        float64 // 0-100
	DateDiff          float64 // days
}

// Config holds evaluator tolerances.
type Config struct {
	AmountTolerance float64 // dollars, default 0.01
	DateWindowDays  float64 // default 14
	MinConfidence   float64 // default 60
}

// DefaultConfig returns the standard tolerances.
func DefaultConfig() Config {
	return Config{
		AmountTolerance: 0.01,
		DateWindowDays:  14,
		MinConfidence:   60,
	}
}
