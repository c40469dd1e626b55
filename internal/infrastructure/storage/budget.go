package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeedDefaultCategories inserts the protected default category set once
// per user. Re-seeding a user who already has categories is a no-op.
func (s *Storage) SeedDefaultCategories(userID string) error {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM budget_categories WHERE user_id = ? AND protected = 1
	`, userID).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, c := range defaultCategories {
		_, err := tx.Exec(`
			INSERT INTO budget_categories
			(id, user_id, name, monthly_limit, color, protected, created_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)
		`, uuid.NewString(), userID, c.Name, c.MonthlyLimit, c.Color, now)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

// SaveBudgetCategory inserts or replaces a category.
func (s *Storage) SaveBudgetCategory(c *BudgetCategory) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO budget_categories
		(id, user_id, name, monthly_limit, color, protected, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.UserID,
		c.Name,
		c.MonthlyLimit,
		c.Color,
		c.Protected,
		c.CreatedAt,
	)
	return err
}

// ListBudgetCategories returns all of a user's categories, name order.
func (s *Storage) ListBudgetCategories(userID string) ([]*BudgetCategory, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, monthly_limit, color, protected, created_at
		FROM budget_categories
		WHERE user_id = ?
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*BudgetCategory
	for rows.Next() {
		c := &BudgetCategory{}
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Name,
			&c.MonthlyLimit,
			&c.Color,
			&c.Protected,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteBudgetCategory removes a category; seeded defaults are refused.
func (s *Storage) DeleteBudgetCategory(userID, id string) error {
	var protected bool
	err := s.db.QueryRow(`
		SELECT protected FROM budget_categories WHERE user_id = ? AND id = ?
	`, userID, id).Scan(&protected)
	if err == sql.ErrNoRows {
		// Deleting an absent category is a no-op.
		return nil
	}
	if err != nil {
		return err
	}
	if protected {
		return ErrProtectedCategory
	}

	_, err = s.db.Exec(`
		DELETE FROM budget_categories WHERE user_id = ? AND id = ?
	`, userID, id)
	return err
}
