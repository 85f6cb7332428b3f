package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
)

// MockRepository is an in-memory implementation of Repository for testing.
type MockRepository struct {
	runs      map[string]*Run
	snapshots map[string][]*Snapshot // keyed by run ID, in seq order

	// Error injection for testing error paths
	CreateRunErr      error
	AppendSnapshotErr error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:      make(map[string]*Run),
		snapshots: make(map[string][]*Snapshot),
	}
}

// Close does nothing for mock.
func (m *MockRepository) Close() error { return nil }

func (m *MockRepository) CreateRun(run *Run, result *recon.Result) error {
	if m.CreateRunErr != nil {
		return m.CreateRunErr
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	cp := *run
	m.runs[run.ID] = &cp
	m.snapshots[run.ID] = []*Snapshot{{
		ID:        uuid.NewString(),
		RunID:     run.ID,
		Seq:       0,
		Action:    ActionInitial,
		Result:    result.Clone(),
		CreatedAt: run.CreatedAt,
	}}
	return nil
}

func (m *MockRepository) GetRun(id string) (*Run, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (m *MockRepository) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		cp := *run
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *MockRepository) AppendSnapshot(runID, action string, result *recon.Result) (*Snapshot, error) {
	if m.AppendSnapshotErr != nil {
		return nil, m.AppendSnapshotErr
	}
	chain, ok := m.snapshots[runID]
	if !ok {
		return nil, fmt.Errorf("run %s has no snapshots", runID)
	}
	snap := &Snapshot{
		ID:        uuid.NewString(),
		RunID:     runID,
		Seq:       chain[len(chain)-1].Seq + 1,
		Action:    action,
		Result:    result.Clone(),
		CreatedAt: time.Now().UTC(),
	}
	m.snapshots[runID] = append(chain, snap)
	return snap, nil
}

func (m *MockRepository) LatestSnapshot(runID string) (*Snapshot, error) {
	chain, ok := m.snapshots[runID]
	if !ok || len(chain) == 0 {
		return nil, nil
	}
	return chain[len(chain)-1], nil
}

func (m *MockRepository) ListSnapshots(runID string) ([]*Snapshot, error) {
	chain := m.snapshots[runID]
	out := make([]*Snapshot, len(chain))
	copy(out, chain)
	return out, nil
}
