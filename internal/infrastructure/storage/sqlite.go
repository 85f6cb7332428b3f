package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
)

// Storage provides SQLite-backed run history. It implements Repository.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage opens (or creates) the database and applies pending
// migrations.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// CreateRun stores the run and its initial engine-output snapshot
// atomically.
func (s *Storage) CreateRun(run *Run, result *recon.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if _, err := tx.Exec(`
		INSERT INTO runs (id, source_a_name, source_b_name, source_a_count, source_b_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceAName, run.SourceBName, run.SourceACount, run.SourceBCount, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO snapshots (id, run_id, seq, action, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), run.ID, 0, ActionInitial, string(resultJSON), run.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting initial snapshot: %w", err)
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID.
func (s *Storage) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, source_a_name, source_b_name, source_a_count, source_b_count, created_at
		FROM runs WHERE id = ?`, id)

	var run Run
	err := row.Scan(&run.ID, &run.SourceAName, &run.SourceBName, &run.SourceACount, &run.SourceBCount, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Storage) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, source_a_name, source_b_name, source_a_count, source_b_count, created_at
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SourceAName, &run.SourceBName, &run.SourceACount, &run.SourceBCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// AppendSnapshot stores the next snapshot of a run.
func (s *Storage) AppendSnapshot(runID, action string, result *recon.Result) (*Snapshot, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var maxSeq sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(seq) FROM snapshots WHERE run_id = ?`, runID).Scan(&maxSeq); err != nil {
		return nil, err
	}
	if !maxSeq.Valid {
		return nil, fmt.Errorf("run %s has no snapshots", runID)
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		RunID:     runID,
		Seq:       int(maxSeq.Int64) + 1,
		Action:    action,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := tx.Exec(`
		INSERT INTO snapshots (id, run_id, seq, action, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.RunID, snap.Seq, snap.Action, string(resultJSON), snap.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return snap, nil
}

// LatestSnapshot returns the current state of a run.
func (s *Storage) LatestSnapshot(runID string) (*Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT id, run_id, seq, action, result_json, created_at
		FROM snapshots WHERE run_id = ? ORDER BY seq DESC LIMIT 1`, runID)
	return scanSnapshot(row)
}

// ListSnapshots returns a run's snapshot chain in sequence order.
func (s *Storage) ListSnapshots(runID string) ([]*Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, seq, action, result_json, created_at
		FROM snapshots WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snaps := make([]*Snapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var snap Snapshot
	var resultJSON string
	err := row.Scan(&snap.ID, &snap.RunID, &snap.Seq, &snap.Action, &resultJSON, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result recon.Result
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", snap.ID, err)
	}
	snap.Result = &result
	return &snap, nil
}
