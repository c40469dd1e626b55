package storage

import (
	"database/sql"
	"time"
)

const recurringColumns = `
	id, user_id, name, amount, category, type, frequency, is_active,
	start_date, next_due_date, last_generated_at, total_occurrences,
	end_date, created_at`

// SaveRecurring inserts or replaces a recurring definition.
func (s *Storage) SaveRecurring(def *RecurringTransaction) error {
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO recurring_transactions
		(id, user_id, name, amount, category, type, frequency, is_active,
		 start_date, next_due_date, last_generated_at, total_occurrences,
		 end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		def.ID,
		def.UserID,
		def.Name,
		def.Amount,
		def.Category,
		def.Type,
		def.Frequency,
		def.IsActive,
		def.StartDate,
		def.NextDueDate,
		def.LastGeneratedAt,
		def.TotalOccurrences,
		def.EndDate,
		def.CreatedAt,
	)
	return err
}

// GetRecurring retrieves one definition, nil when absent.
func (s *Storage) GetRecurring(userID, id string) (*RecurringTransaction, error) {
	row := s.db.QueryRow(`
		SELECT `+recurringColumns+`
		FROM recurring_transactions WHERE user_id = ? AND id = ?
	`, userID, id)

	def, err := scanRecurring(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return def, err
}

// ListRecurring returns all of a user's definitions, insertion order.
func (s *Storage) ListRecurring(userID string) ([]*RecurringTransaction, error) {
	return s.listRecurring(`
		SELECT `+recurringColumns+`
		FROM recurring_transactions WHERE user_id = ?
		ORDER BY created_at ASC
	`, userID)
}

// ListActiveRecurring returns only active definitions, insertion order.
func (s *Storage) ListActiveRecurring(userID string) ([]*RecurringTransaction, error) {
	return s.listRecurring(`
		SELECT `+recurringColumns+`
		FROM recurring_transactions WHERE user_id = ? AND is_active = 1
		ORDER BY created_at ASC
	`, userID)
}

// AdvanceRecurring moves a definition one period forward after a match.
func (s *Storage) AdvanceRecurring(userID, id string, nextDue, generatedAt time.Time) error {
	_, err := s.db.Exec(`
		UPDATE recurring_transactions
		SET next_due_date = ?,
		    last_generated_at = ?,
		    total_occurrences = total_occurrences + 1
		WHERE user_id = ? AND id = ?
	`, nextDue, generatedAt, userID, id)
	return err
}

// DeactivateRecurring flips IsActive off; false when already inactive or
// absent.
func (s *Storage) DeactivateRecurring(userID, id string) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE recurring_transactions
		SET is_active = 0
		WHERE user_id = ? AND id = ? AND is_active = 1
	`, userID, id)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Storage) listRecurring(query string, args ...interface{}) ([]*RecurringTransaction, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []*RecurringTransaction
	for rows.Next() {
		def, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func scanRecurring(row rowScanner) (*RecurringTransaction, error) {
	def := &RecurringTransaction{}
	var lastGenerated, endDate sql.NullTime

	err := row.Scan(
		&def.ID,
		&def.UserID,
		&def.Name,
		&def.Amount,
		&def.Category,
		&def.Type,
		&def.Frequency,
		&def.IsActive,
		&def.StartDate,
		&def.NextDueDate,
		&lastGenerated,
		&def.TotalOccurrences,
		&endDate,
		&def.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastGenerated.Valid {
		def.LastGeneratedAt = &lastGenerated.Time
	}
	if endDate.Valid {
		def.EndDate = &endDate.Time
	}
	return def, nil
}
