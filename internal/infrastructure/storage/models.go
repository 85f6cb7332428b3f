package storage

import (
	"time"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
)

// Run is one reconciliation of two uploaded sources. The engine output and
// every subsequent resolution decision live in the run's snapshot chain;
// the snapshot with the highest sequence number is the current state.
type Run struct {
	ID           string    `json:"id"`
	SourceAName  string    `json:"source_a_name"`
	SourceBName  string    `json:"source_b_name"`
	SourceACount int       `json:"source_a_count"`
	SourceBCount int       `json:"source_b_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot is one immutable result state within a run. Seq 0 is the
// engine output; each accepted decision appends the next sequence with
// the action that produced it.
type Snapshot struct {
	ID        string        `json:"id"`
	RunID     string        `json:"run_id"`
	Seq       int           `json:"seq"`
	Action    string        `json:"action"`
	Result    *recon.Result `json:"result"`
	CreatedAt time.Time     `json:"created_at"`
}

// ActionInitial marks the engine-produced first snapshot of a run.
const ActionInitial = "reconcile"
