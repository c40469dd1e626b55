package storage

import (
	"database/sql"
	"time"
)

// StartImportRun records the start of a bank-feed batch and returns the
// run ID.
func (s *Storage) StartImportRun(userID, source string, dryRun bool) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_runs (user_id, source, started_at, dry_run, status)
		VALUES (?, ?, ?, ?, 'running')
	`, userID, source, time.Now().UTC(), dryRun)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CompleteImportRun records the batch outcome counts.
func (s *Storage) CompleteImportRun(runID int64, processed, matched, stored, potential, errors int) error {
	_, err := s.db.Exec(`
		UPDATE import_runs
		SET completed_at = ?, processed = ?, matched = ?, stored = ?,
		    potential = ?, errors = ?, status = 'completed'
		WHERE id = ?
	`, time.Now().UTC(), processed, matched, stored, potential, errors, runID)
	return err
}

// ListImportRuns returns recent runs, newest first.
func (s *Storage) ListImportRuns(userID string, limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, source, started_at, completed_at, dry_run,
		       processed, matched, stored, potential, errors, status
		FROM import_runs
		WHERE user_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var run ImportRun
		var completedAt sql.NullTime
		err := rows.Scan(
			&run.ID,
			&run.UserID,
			&run.Source,
			&run.StartedAt,
			&completedAt,
			&run.DryRun,
			&run.Processed,
			&run.Matched,
			&run.Stored,
			&run.Potential,
			&run.Errors,
			&run.Status,
		)
		if err != nil {
			return nil, err
		}
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
