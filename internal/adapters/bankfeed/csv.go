package bankfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pockettrack/backend/internal/domain/matcher"
)

// csv column names; matching is case-insensitive and order-independent.
const (
	colTransactionID = "transaction_id"
	colName          = "name"
	colAmount        = "amount"
	colCategory      = "category"
	colDate          = "date"
)

// ReadCSV parses a CSV statement export. The first row is a header
// naming at least transaction_id, name, amount and date; category is
// optional. Column order does not matter.
func ReadCSV(r io.Reader) ([]matcher.BankTransaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colTransactionID, colName, colAmount, colDate} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var out []matcher.BankTransaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		amount, err := strconv.ParseFloat(field(colAmount), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad amount %q", line, field(colAmount))
		}

		date, err := parseDate(field(colDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		out = append(out, matcher.BankTransaction{
			ID:       field(colTransactionID),
			Name:     field(colName),
			Amount:   amount,
			Category: field(colCategory),
			Date:     date,
		})
	}

	return out, nil
}

// ReadCSVFile parses a CSV statement from disk.
func ReadCSVFile(path string) ([]matcher.BankTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}
