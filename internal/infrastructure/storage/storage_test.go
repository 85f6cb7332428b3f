package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
	"github.com/donorops/reconcile-backend/internal/infrastructure/storage"
)

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testResult() *recon.Result {
	return &recon.Result{
		PerfectMatches: []recon.MatchPair{{
			SourceA: recon.Transaction{ID: "a1", Date: "2023-11-01", Name: "John Tan", Amount: decimal.NewFromInt(100)},
			SourceB: recon.Transaction{ID: "b1", Date: "2023-11-01", Name: "Tan, John", Amount: decimal.NewFromInt(100)},
		}},
		PartialMatches: []recon.PartialMatch{{
			SourceA:         recon.Transaction{ID: "a2", Date: "2023-11-01", Name: "Lim Wei", Amount: decimal.NewFromInt(50)},
			SourceB:         recon.Transaction{ID: "b2", Date: "2023-11-01", Name: "Wei Lim", Amount: decimal.RequireFromString("48.25")},
			Reason:          "amount differs by S$1.75",
			ConfidenceScore: 0.6,
		}},
		UnmatchedA: []recon.Transaction{},
		UnmatchedB: []recon.Transaction{},
	}
}

func newTestRun() *storage.Run {
	return &storage.Run{
		ID:           uuid.NewString(),
		SourceAName:  "stripe_report.csv",
		SourceBName:  "dms_export.csv",
		SourceACount: 2,
		SourceBCount: 2,
	}
}

func TestStorage_CreateAndGetRun(t *testing.T) {
	s := newTestStorage(t)
	run := newTestRun()

	require.NoError(t, s.CreateRun(run, testResult()))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "stripe_report.csv", got.SourceAName)
	assert.Equal(t, 2, got.SourceACount)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStorage_GetRun_NotFound(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.GetRun("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStorage_InitialSnapshot(t *testing.T) {
	s := newTestStorage(t)
	run := newTestRun()
	require.NoError(t, s.CreateRun(run, testResult()))

	snap, err := s.LatestSnapshot(run.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, 0, snap.Seq)
	assert.Equal(t, storage.ActionInitial, snap.Action)
	require.NotNil(t, snap.Result)
	assert.Len(t, snap.Result.PerfectMatches, 1)
	assert.Len(t, snap.Result.PartialMatches, 1)

	// Decimal amounts survive the JSON round trip.
	pm := snap.Result.PartialMatches[0]
	assert.True(t, pm.SourceB.Amount.Equal(decimal.RequireFromString("48.25")))
	assert.Equal(t, "amount differs by S$1.75", pm.Reason)
}

func TestStorage_AppendSnapshot(t *testing.T) {
	s := newTestStorage(t)
	run := newTestRun()
	require.NoError(t, s.CreateRun(run, testResult()))

	// Simulate a confirm: partial moves to perfect.
	next := testResult()
	next.PerfectMatches = append(next.PerfectMatches, next.PartialMatches[0].Pair())
	next.PartialMatches = nil

	snap, err := s.AppendSnapshot(run.ID, "confirm", next)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Seq)
	assert.Equal(t, "confirm", snap.Action)

	latest, err := s.LatestSnapshot(run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Seq)
	assert.Len(t, latest.Result.PerfectMatches, 2)
	assert.Empty(t, latest.Result.PartialMatches)

	chain, err := s.ListSnapshots(run.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, 0, chain[0].Seq)
	assert.Equal(t, 1, chain[1].Seq)
}

func TestStorage_AppendSnapshot_UnknownRun(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.AppendSnapshot("missing", "confirm", testResult())
	assert.Error(t, err)
}

func TestStorage_ListRuns(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateRun(newTestRun(), testResult()))
	}

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	limited, err := s.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMockRepository_MatchesSQLiteBehavior(t *testing.T) {
	// The mock must follow the same contract the handlers rely on.
	m := storage.NewMockRepository()
	run := newTestRun()
	require.NoError(t, m.CreateRun(run, testResult()))

	got, err := m.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	snap, err := m.LatestSnapshot(run.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Seq)

	next, err := m.AppendSnapshot(run.ID, "flag", testResult())
	require.NoError(t, err)
	assert.Equal(t, 1, next.Seq)

	missing, err := m.GetRun("missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
