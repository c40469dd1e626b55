package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_potential_matches",
		Up:      migration002AddPotentialMatches,
	},
	{
		Version: 3,
		Name:    "add_budget_categories",
		Up:      migration003AddBudgetCategories,
	},
	{
		Version: 4,
		Name:    "add_import_runs",
		Up:      migration004AddImportRuns,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func (s *Storage) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func migration001InitialSchema(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE transactions (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount REAL NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			date TIMESTAMP NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			is_manual INTEGER NOT NULL DEFAULT 0,
			bank_transaction_id TEXT NOT NULL DEFAULT '',
			recurring_transaction_id TEXT NOT NULL DEFAULT '',
			matched_at TIMESTAMP,
			cancelled_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, id)
		);

		CREATE INDEX idx_transactions_user_date
			ON transactions(user_id, date);
		CREATE INDEX idx_transactions_candidates
			ON transactions(user_id, is_manual, bank_transaction_id);

		CREATE TABLE recurring_transactions (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			amount REAL NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			frequency TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			start_date TIMESTAMP NOT NULL,
			next_due_date TIMESTAMP NOT NULL,
			last_generated_at TIMESTAMP,
			total_occurrences INTEGER NOT NULL DEFAULT 0,
			end_date TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, id)
		);

		CREATE INDEX idx_recurring_active
			ON recurring_transactions(user_id, is_active);
	`)
	return err
}

func migration002AddPotentialMatches(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE potential_matches (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			manual_transaction_id TEXT NOT NULL,
			bank_transaction_id TEXT NOT NULL,
			match_type TEXT NOT NULL DEFAULT 'auto',
			confidence REAL NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, id)
		);

		CREATE INDEX idx_potential_matches_manual
			ON potential_matches(user_id, manual_transaction_id);
	`)
	return err
}

func migration003AddBudgetCategories(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE budget_categories (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL COLLATE NOCASE,
			monthly_limit REAL NOT NULL DEFAULT 0,
			color TEXT NOT NULL DEFAULT '',
			protected INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, id),
			UNIQUE (user_id, name)
		);
	`)
	return err
}

func migration004AddImportRuns(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE import_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			dry_run INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL DEFAULT 0,
			matched INTEGER NOT NULL DEFAULT 0,
			stored INTEGER NOT NULL DEFAULT 0,
			potential INTEGER NOT NULL DEFAULT 0,
			errors INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'running'
		);

		CREATE INDEX idx_import_runs_user
			ON import_runs(user_id, started_at);
	`)
	return err
}
