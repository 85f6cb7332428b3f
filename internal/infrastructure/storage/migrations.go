package storage

import (
	"database/sql"
	"fmt"
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
		Name:    "create_runs_table",
		Up:      migration001CreateRunsTable,
	},
	{
		Version: 2,
		Name:    "create_snapshots_table",
		Up:      migration002CreateSnapshotsTable,
	},
}

// runMigrations executes all pending migrations in a transaction each.
func (s *Storage) runMigrations() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range allMigrations {
		if m.Version <= current {
			continue
		}
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func migration001CreateRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE runs (
			id TEXT PRIMARY KEY,
			source_a_name TEXT NOT NULL,
			source_b_name TEXT NOT NULL,
			source_a_count INTEGER NOT NULL,
			source_b_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`)
	return err
}

func migration002CreateSnapshotsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE snapshots (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			action TEXT NOT NULL,
			result_json TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (run_id, seq)
		)`)
	return err
}
