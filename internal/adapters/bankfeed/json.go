package bankfeed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pockettrack/backend/internal/domain/matcher"
)

// jsonRecord is the wire shape of one exported transaction. The date is
// kept as a string so both RFC3339 and plain dates parse.
type jsonRecord struct {
	TransactionID string  `json:"transaction_id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category"`
	Date          string  `json:"date"`
}

// ReadJSON parses a JSON statement export: an array of records with
// transaction_id, name, amount, category and date fields.
func ReadJSON(r io.Reader) ([]matcher.BankTransaction, error) {
	var records []jsonRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}

	out := make([]matcher.BankTransaction, 0, len(records))
	for i, rec := range records {
		date, err := parseDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, matcher.BankTransaction{
			ID:       rec.TransactionID,
			Name:     rec.Name,
			Amount:   rec.Amount,
			Category: rec.Category,
			Date:     date,
		})
	}

	return out, nil
}

// ReadJSONFile parses a JSON statement from disk.
func ReadJSONFile(path string) ([]matcher.BankTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()
	return ReadJSON(f)
}
