package recon

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id, date, name, amount string) Transaction {
	return Transaction{
		ID:     id,
		Date:   date,
		Name:   name,
		Amount: decimal.RequireFromString(amount),
	}
}

func TestReconcile_PerfectMatch(t *testing.T) {
	// Arrange
	sourceA := []Transaction{tx("a1", "2023-11-01", "John Tan", "96.80")}
	sourceB := []Transaction{tx("b1", "2023-11-01", "Tan, John", "96.80")}

	// Act
	result, err := Reconcile(sourceA, sourceB, DefaultConfig())

	// Assert
	require.NoError(t, err)
	require.Len(t, result.PerfectMatches, 1)
	assert.Equal(t, "a1", result.PerfectMatches[0].SourceA.ID)
	assert.Equal(t, "b1", result.PerfectMatches[0].SourceB.ID)
	assert.Empty(t, result.PartialMatches)
	assert.Empty(t, result.UnmatchedA)
	assert.Empty(t, result.UnmatchedB)
}

func TestReconcile_PartialMatch_AmountDiscrepancy(t *testing.T) {
	sourceA := []Transaction{tx("a2", "2023-11-01", "Lim Wei", "50.00")}
	sourceB := []Transaction{tx("b2", "2023-11-01", "Wei Lim", "48.25")}

	result, err := Reconcile(sourceA, sourceB, DefaultConfig())

	require.NoError(t, err)
	assert.Empty(t, result.PerfectMatches)
	require.Len(t, result.PartialMatches, 1)

	pm := result.PartialMatches[0]
	assert.Equal(t, "a2", pm.SourceA.ID)
	assert.Contains(t, pm.Reason, "amount differs by S$1.75")
	// Names normalize identically, so the reason must not mention them.
	assert.NotContains(t, pm.Reason, "name")
	assert.Greater(t, pm.ConfidenceScore, 0.3)
	assert.Less(t, pm.ConfidenceScore, 0.9)
}

func TestReconcile_DateHardCutoff(t *testing.T) {
	// Identical name and amount, but nine days apart: the pair never
	// becomes a candidate, whatever the other signals say.
	sourceA := []Transaction{tx("a1", "2023-11-01", "John Tan", "100.00")}
	sourceB := []Transaction{tx("b1", "2023-11-10", "John Tan", "100.00")}

	result, err := Reconcile(sourceA, sourceB, DefaultConfig())

	require.NoError(t, err)
	assert.Empty(t, result.PerfectMatches)
	assert.Empty(t, result.PartialMatches)
	assert.Len(t, result.UnmatchedA, 1)
	assert.Len(t, result.UnmatchedB, 1)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	t.Run("both empty", func(t *testing.T) {
		result, err := Reconcile(nil, nil, DefaultConfig())
		require.NoError(t, err)
		assert.Empty(t, result.PerfectMatches)
		assert.Empty(t, result.PartialMatches)
		assert.Empty(t, result.UnmatchedA)
		assert.Empty(t, result.UnmatchedB)
	})

	t.Run("one side empty", func(t *testing.T) {
		sourceB := []Transaction{tx("b1", "2023-11-01", "John Tan", "100.00")}
		result, err := Reconcile(nil, sourceB, DefaultConfig())
		require.NoError(t, err)
		assert.Empty(t, result.UnmatchedA)
		require.Len(t, result.UnmatchedB, 1)
		assert.Equal(t, "b1", result.UnmatchedB[0].ID)
	})
}

func TestReconcile_DuplicateIDsRejected(t *testing.T) {
	sourceA := []Transaction{
		tx("a1", "2023-11-01", "John Tan", "100.00"),
		tx("a1", "2023-11-02", "Lim Wei", "50.00"),
	}

	result, err := Reconcile(sourceA, nil, DefaultConfig())

	require.Error(t, err)
	assert.Nil(t, result)

	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "A", dup.Source)
	assert.Equal(t, "a1", dup.ID)
}

func TestReconcile_InvalidDateRoutedToUnmatched(t *testing.T) {
	sourceA := []Transaction{
		tx("a1", "not-a-date", "John Tan", "100.00"),
		tx("a2", "2023-11-01", "Lim Wei", "50.00"),
	}
	sourceB := []Transaction{tx("b1", "2023-11-01", "Wei Lim", "50.00")}

	result, err := Reconcile(sourceA, sourceB, DefaultConfig())

	require.NoError(t, err)
	require.Len(t, result.UnmatchedA, 1)
	assert.Equal(t, "a1", result.UnmatchedA[0].ID)
	require.Len(t, result.PerfectMatches, 1)
	assert.Equal(t, "a2", result.PerfectMatches[0].SourceA.ID)

	// The exclusion is reported, not silent.
	require.Len(t, result.DateErrors, 1)
	assert.Equal(t, "A", result.DateErrors[0].Source)
	assert.Equal(t, "a1", result.DateErrors[0].ID)
	assert.Equal(t, "not-a-date", result.DateErrors[0].Raw)
}

func TestReconcile_DateErrorsDistinguishBadDatesFromUnmatched(t *testing.T) {
	// Both records end up unmatched, but only the unparseable date is an
	// exclusion the caller may want to log or reject the run over.
	sourceA := []Transaction{
		tx("bad", "31/31/2023", "John Tan", "100.00"),
		tx("plain", "2023-11-20", "Lim Wei", "50.00"),
	}

	result, err := Reconcile(sourceA, nil, DefaultConfig())

	require.NoError(t, err)
	require.Len(t, result.UnmatchedA, 2)

	require.Len(t, result.DateErrors, 1)
	de := result.DateErrors[0]
	assert.Equal(t, "bad", de.ID)
	assert.Equal(t, "31/31/2023", de.Raw)
	assert.Contains(t, de.Error(), "invalid date format")
}

func TestReconcile_DateErrorsExcludedFromJSON(t *testing.T) {
	sourceA := []Transaction{tx("a1", "garbage", "John Tan", "100.00")}

	result, err := Reconcile(sourceA, nil, DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, result.DateErrors)

	// The serialized partition keeps its four fields; diagnostics are a
	// run-time concern.
	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "DateErrors")
	assert.NotContains(t, string(data), "invalid date format")
}

// sampleLists builds a dataset with a mix of perfect, partial and
// unmatched outcomes, patterned on real processor and ledger exports.
func sampleLists() ([]Transaction, []Transaction) {
	sourceA := []Transaction{
		tx("PAY-1001", "2023-10-26", "John Tan", "99.70"),
		tx("PAY-1002", "2023-10-26", "Lim, Wei", "49.75"),
		tx("PAY-1003", "2023-10-27", "Siti Binte Ahmad", "250.00"),
		tx("PAY-1004", "2023-10-27", "Rajesh Kumar", "75.20"),
		tx("PAY-1005", "2023-10-28", "Cheryl Ong", "1000.00"),
		tx("PAY-1006", "2023-10-28", "Anonymous", "19.70"),
	}
	sourceB := []Transaction{
		tx("ACC-501", "2023-10-27", "Tan, John", "99.70"),
		tx("ACC-502", "2023-10-27", "Wei Lim", "49.75"),
		tx("ACC-503", "2023-10-27", "Siti B. Ahmad", "250.00"),
		tx("ACC-504", "2023-10-28", "R Kumar", "74.90"),
		tx("ACC-505", "2023-10-28", "Ong, Cheryl", "1000.00"),
		tx("ACC-510", "2023-11-15", "SG Gives", "150.00"),
	}
	return sourceA, sourceB
}

func TestReconcile_PartitionInvariant(t *testing.T) {
	sourceA, sourceB := sampleLists()

	result, err := Reconcile(sourceA, sourceB, DefaultConfig())
	require.NoError(t, err)

	assertPartition(t, result, sourceA, sourceB)
}

// assertPartition checks that every input transaction lands in exactly one
// bucket of the result.
func assertPartition(t *testing.T, result *Result, sourceA, sourceB []Transaction) {
	t.Helper()

	seenA := make(map[string]int)
	seenB := make(map[string]int)
	for _, m := range result.PerfectMatches {
		seenA[m.SourceA.ID]++
		seenB[m.SourceB.ID]++
	}
	for _, m := range result.PartialMatches {
		seenA[m.SourceA.ID]++
		seenB[m.SourceB.ID]++
	}
	for _, u := range result.UnmatchedA {
		seenA[u.ID]++
	}
	for _, u := range result.UnmatchedB {
		seenB[u.ID]++
	}

	require.Len(t, seenA, len(sourceA))
	require.Len(t, seenB, len(sourceB))
	for _, a := range sourceA {
		assert.Equal(t, 1, seenA[a.ID], "source A transaction %s", a.ID)
	}
	for _, b := range sourceB {
		assert.Equal(t, 1, seenB[b.ID], "source B transaction %s", b.ID)
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	sourceA, sourceB := sampleLists()
	cfg := DefaultConfig()

	first, err := Reconcile(sourceA, sourceB, cfg)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Reconcile(sourceA, sourceB, cfg)
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(againJSON), "run %d", i)
	}
}

func TestReconcile_DeterministicWithParallelScoring(t *testing.T) {
	// Enough pairwise combinations to cross the worker-pool threshold.
	var sourceA, sourceB []Transaction
	for i := 0; i < 40; i++ {
		day := 26 + i%3
		sourceA = append(sourceA, tx(fmt.Sprintf("a%d", i), fmt.Sprintf("2023-10-%02d", day), "John Tan", "100.00"))
		sourceB = append(sourceB, tx(fmt.Sprintf("b%d", i), fmt.Sprintf("2023-10-%02d", day), "Tan, John", "100.00"))
	}

	serial := DefaultConfig()
	serial.Workers = 1
	parallel := DefaultConfig()
	parallel.Workers = 8

	want, err := Reconcile(sourceA, sourceB, serial)
	require.NoError(t, err)
	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		got, err := Reconcile(sourceA, sourceB, parallel)
		require.NoError(t, err)
		gotJSON, err := json.Marshal(got)
		require.NoError(t, err)
		assert.Equal(t, string(wantJSON), string(gotJSON))
	}
}

func TestReconcile_ThresholdMonotonicity(t *testing.T) {
	sourceA, sourceB := sampleLists()

	prevPerfect := -1
	prevPartial := -1
	first := true
	for _, threshold := range []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99} {
		cfg := DefaultConfig()
		cfg.PerfectThreshold = threshold

		result, err := Reconcile(sourceA, sourceB, cfg)
		require.NoError(t, err)

		perfect := len(result.PerfectMatches)
		partial := len(result.PartialMatches)
		if !first {
			assert.LessOrEqual(t, perfect, prevPerfect, "threshold %.2f", threshold)
			assert.GreaterOrEqual(t, partial, prevPartial, "threshold %.2f", threshold)
		}
		prevPerfect, prevPartial = perfect, partial
		first = false
	}
}

func TestReconcile_GreedyPrefersHigherScore(t *testing.T) {
	// Two A records compete for one B record; the closer amount wins and
	// the other goes unmatched.
	sourceA := []Transaction{
		tx("a1", "2023-11-01", "John Tan", "100.40"),
		tx("a2", "2023-11-01", "John Tan", "100.00"),
	}
	sourceB := []Transaction{tx("b1", "2023-11-01", "Tan, John", "100.00")}

	result, err := Reconcile(sourceA, sourceB, DefaultConfig())

	require.NoError(t, err)
	require.Len(t, result.PerfectMatches, 1)
	assert.Equal(t, "a2", result.PerfectMatches[0].SourceA.ID)
	require.Len(t, result.UnmatchedA, 1)
	assert.Equal(t, "a1", result.UnmatchedA[0].ID)
}

func TestReconcile_UnmatchedPreserveInputOrder(t *testing.T) {
	sourceA := []Transaction{
		tx("a1", "2023-01-01", "Alpha", "10.00"),
		tx("a2", "2023-02-01", "Beta", "20.00"),
		tx("a3", "2023-03-01", "Gamma", "30.00"),
	}

	result, err := Reconcile(sourceA, nil, DefaultConfig())

	require.NoError(t, err)
	require.Len(t, result.UnmatchedA, 3)
	assert.Equal(t, "a1", result.UnmatchedA[0].ID)
	assert.Equal(t, "a2", result.UnmatchedA[1].ID)
	assert.Equal(t, "a3", result.UnmatchedA[2].ID)
}

func TestReconcile_ReferenceTokenLiftsScore(t *testing.T) {
	a := tx("a1", "2023-11-01", "David Chen", "5500.00")
	a.Description = "Payout ref PN54321"
	b := tx("b1", "2023-11-02", "Chen, David", "5500.00")
	b.Description = "PN54321"

	result, err := Reconcile([]Transaction{a}, []Transaction{b}, DefaultConfig())

	require.NoError(t, err)
	require.Len(t, result.PerfectMatches, 1)
}
