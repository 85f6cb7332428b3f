package storage

import "github.com/donorops/reconcile-backend/internal/domain/recon"

// Repository defines the run-history storage interface. The engine never
// touches it; only the API layer persists and replays snapshots. The
// interface keeps the SQLite implementation swappable and makes handler
// tests trivial with the in-memory mock.
type Repository interface {
	// CreateRun stores a new run together with its initial snapshot.
	CreateRun(run *Run, result *recon.Result) error

	// GetRun retrieves a run by ID. Returns nil when not found.
	GetRun(id string) (*Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// AppendSnapshot stores the next snapshot of a run, returning it with
	// its assigned sequence number.
	AppendSnapshot(runID, action string, result *recon.Result) (*Snapshot, error)

	// LatestSnapshot returns the current state of a run. Returns nil when
	// the run does not exist.
	LatestSnapshot(runID string) (*Snapshot, error)

	// ListSnapshots returns a run's full snapshot chain in sequence order.
	ListSnapshots(runID string) ([]*Snapshot, error)

	Close() error
}
