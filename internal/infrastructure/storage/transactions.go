package storage

import (
	"database/sql"
	"strings"
	"time"
)

const transactionColumns = `
	id, user_id, description, amount, category, date, type, status,
	is_manual, bank_transaction_id, recurring_transaction_id,
	matched_at, cancelled_at, created_at`

// SaveTransaction inserts or replaces a transaction.
func (s *Storage) SaveTransaction(tx *Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO transactions
		(id, user_id, description, amount, category, date, type, status,
		 is_manual, bank_transaction_id, recurring_transaction_id,
		 matched_at, cancelled_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID,
		tx.UserID,
		tx.Description,
		tx.Amount,
		tx.Category,
		tx.Date,
		tx.Type,
		tx.Status,
		tx.IsManual,
		tx.BankTransactionID,
		tx.RecurringTransactionID,
		tx.MatchedAt,
		tx.CancelledAt,
		tx.CreatedAt,
	)
	return err
}

// GetTransaction retrieves one transaction, nil when absent.
func (s *Storage) GetTransaction(userID, id string) (*Transaction, error) {
	row := s.db.QueryRow(`
		SELECT `+transactionColumns+`
		FROM transactions WHERE user_id = ? AND id = ?
	`, userID, id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tx, err
}

// ListTransactions returns transactions matching the filters, newest first.
func (s *Storage) ListTransactions(userID string, filters TransactionFilters) ([]*Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []interface{}{userID}

	if filters.Status != "" {
		query += ` AND status = ?`
		args = append(args, filters.Status)
	}
	if filters.Type != "" {
		query += ` AND type = ?`
		args = append(args, filters.Type)
	}
	if filters.Category != "" {
		query += ` AND LOWER(category) = ?`
		args = append(args, strings.ToLower(filters.Category))
	}
	if !filters.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		query += ` AND date < ?`
		args = append(args, filters.To)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY date DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListManualUnmatched returns the user's manual transactions with no bank
// back-reference yet, oldest first, so older pending items get first shot
// at an incoming bank transaction.
func (s *Storage) ListManualUnmatched(userID string) ([]*Transaction, error) {
	rows, err := s.db.Query(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND is_manual = 1 AND bank_transaction_id = ''
		ORDER BY date ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// MarkMatched flips pending->paid and records the bank back-reference.
// The WHERE clause makes this a compare-and-set: a transaction already
// paid or cancelled is left untouched and false is returned.
func (s *Storage) MarkMatched(userID, id, bankTransactionID string, at time.Time) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE transactions
		SET status = ?, bank_transaction_id = ?, matched_at = ?
		WHERE user_id = ? AND id = ? AND is_manual = 1 AND status = ?
	`, StatusPaid, bankTransactionID, at, userID, id, StatusPending)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

// CancelTransaction flips pending->cancelled; false when not pending.
func (s *Storage) CancelTransaction(userID, id string, at time.Time) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE transactions
		SET status = ?, cancelled_at = ?
		WHERE user_id = ? AND id = ? AND status = ?
	`, StatusCancelled, at, userID, id, StatusPending)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

// SumIncome totals paid income transactions dated in [from, to).
func (s *Storage) SumIncome(userID string, from, to time.Time) (float64, error) {
	var total sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT SUM(amount) FROM transactions
		WHERE user_id = ? AND type = ? AND status = ? AND date >= ? AND date < ?
	`, userID, TypeIncome, StatusPaid, from, to).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}

// SpendingByCategory totals paid expense transactions dated in [from, to),
// keyed by lower-cased category name.
func (s *Storage) SpendingByCategory(userID string, from, to time.Time) (map[string]float64, error) {
	rows, err := s.db.Query(`
		SELECT LOWER(category), SUM(amount) FROM transactions
		WHERE user_id = ? AND type = ? AND status = ? AND date >= ? AND date < ?
		GROUP BY LOWER(category)
	`, userID, TypeExpense, StatusPaid, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spending := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		spending[category] = total
	}
	return spending, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*Transaction, error) {
	tx := &Transaction{}
	var matchedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Description,
		&tx.Amount,
		&tx.Category,
		&tx.Date,
		&tx.Type,
		&tx.Status,
		&tx.IsManual,
		&tx.BankTransactionID,
		&tx.RecurringTransactionID,
		&matchedAt,
		&cancelledAt,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if matchedAt.Valid {
		tx.MatchedAt = &matchedAt.Time
	}
	if cancelledAt.Valid {
		tx.CancelledAt = &cancelledAt.Time
	}
	return tx, nil
}

func collectTransactions(rows *sql.Rows) ([]*Transaction, error) {
	var txs []*Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
