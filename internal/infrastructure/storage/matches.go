package storage

import "time"

// SavePotentialMatch stores a sub-threshold match for user review.
func (s *Storage) SavePotentialMatch(pm *PotentialMatch) error {
	if pm.CreatedAt.IsZero() {
		pm.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO potential_matches
		(id, user_id, manual_transaction_id, bank_transaction_id,
		 match_type, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		pm.ID,
		pm.UserID,
		pm.ManualTransactionID,
		pm.BankTransactionID,
		pm.MatchType,
		pm.Confidence,
		pm.CreatedAt,
	)
	return err
}

// ListPotentialMatches returns stored matches awaiting review, newest
// first.
func (s *Storage) ListPotentialMatches(userID string) ([]*PotentialMatch, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, manual_transaction_id, bank_transaction_id,
		       match_type, confidence, created_at
		FROM potential_matches
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*PotentialMatch
	for rows.Next() {
		pm := &PotentialMatch{}
		err := rows.Scan(
			&pm.ID,
			&pm.UserID,
			&pm.ManualTransactionID,
			&pm.BankTransactionID,
			&pm.MatchType,
			&pm.Confidence,
			&pm.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		matches = append(matches, pm)
	}
	return matches, rows.Err()
}

// DismissPotentialMatch removes a stored match. Deleting an absent row is
// a no-op, which makes dismiss idempotent.
func (s *Storage) DismissPotentialMatch(userID, id string) error {
	_, err := s.db.Exec(`
		DELETE FROM potential_matches WHERE user_id = ? AND id = ?
	`, userID, id)
	return err
}

// ClearPotentialMatchesFor removes all stored matches referencing a
// manual transaction.
func (s *Storage) ClearPotentialMatchesFor(userID, manualTransactionID string) error {
	_, err := s.db.Exec(`
		DELETE FROM potential_matches
		WHERE user_id = ? AND manual_transaction_id = ?
	`, userID, manualTransactionID)
	return err
}
