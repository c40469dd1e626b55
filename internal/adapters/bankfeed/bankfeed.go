// Package bankfeed parses bank statement exports into the transactions
// the reconciliation flow consumes. CSV and JSON exports are supported.
package bankfeed

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pockettrack/backend/internal/domain/matcher"
)

// dateLayouts are tried in order when parsing record dates.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ReadFile parses a statement file, picking the format from the
// extension (.csv or .json).
func ReadFile(path string) ([]matcher.BankTransaction, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVFile(path)
	case ".json":
		return ReadJSONFile(path)
	default:
		return nil, fmt.Errorf("unsupported statement format %q", filepath.Ext(path))
	}
}
