package recon

import (
	"fmt"
	"sort"
	"strings"
)

// Reconcile partitions the two source lists into perfect matches, partial
// matches and unmatched transactions.
//
// Assignment is global greedy maximum-weight matching: all candidate pairs
// at or above the consideration threshold are sorted by combined score
// descending (stable, so ties keep candidate-generation order) and taken
// in that order while both sides are still free. Exact maximum-weight
// bipartite assignment is deliberately not attempted; real exports are
// near-diagonal and greedy assignment is simpler while matching it in
// practice.
//
// Fatal errors are limited to duplicate IDs within one source list
// (*DuplicateIDError). Unparseable dates are per-transaction: the record
// goes to the unmatched list and the failure is reported in
// Result.DateErrors, so a caller can log the exclusions or treat any as
// grounds to reject the run.
func Reconcile(sourceA, sourceB []Transaction, cfg Config) (*Result, error) {
	if err := validateIDs(sourceA, "A"); err != nil {
		return nil, err
	}
	if err := validateIDs(sourceB, "B"); err != nil {
		return nil, err
	}

	aDates, aValid, aDateErrs := parseDates(sourceA, "A")
	bDates, bValid, bDateErrs := parseDates(sourceB, "B")

	cands := generateCandidates(sourceA, sourceB, aDates, bDates, aValid, bValid, cfg.DateWindowDays)
	scoreCandidates(cands, sourceA, sourceB, cfg)

	considered := cands[:0]
	for _, c := range cands {
		if c.scores.Combined >= cfg.MinConsiderationScore {
			considered = append(considered, c)
		}
	}

	sort.SliceStable(considered, func(i, j int) bool {
		return considered[i].scores.Combined > considered[j].scores.Combined
	})

	result := &Result{
		PerfectMatches: []MatchPair{},
		PartialMatches: []PartialMatch{},
		UnmatchedA:     []Transaction{},
		UnmatchedB:     []Transaction{},
		DateErrors:     append(aDateErrs, bDateErrs...),
	}

	assignedA := make([]bool, len(sourceA))
	assignedB := make([]bool, len(sourceB))

	for _, c := range considered {
		if assignedA[c.aIdx] || assignedB[c.bIdx] {
			continue
		}
		assignedA[c.aIdx] = true
		assignedB[c.bIdx] = true

		a, b := sourceA[c.aIdx], sourceB[c.bIdx]
		if isPerfect(c.scores, cfg) {
			result.PerfectMatches = append(result.PerfectMatches, MatchPair{SourceA: a, SourceB: b})
			continue
		}
		result.PartialMatches = append(result.PartialMatches, PartialMatch{
			SourceA:         a,
			SourceB:         b,
			Reason:          discrepancyReason(a, b, c, cfg),
			ConfidenceScore: c.scores.Combined,
		})
	}

	for i, tx := range sourceA {
		if !assignedA[i] {
			result.UnmatchedA = append(result.UnmatchedA, tx)
		}
	}
	for j, tx := range sourceB {
		if !assignedB[j] {
			result.UnmatchedB = append(result.UnmatchedB, tx)
		}
	}

	return result, nil
}

// validateIDs rejects lists containing repeated transaction IDs.
func validateIDs(list []Transaction, source string) error {
	seen := make(map[string]struct{}, len(list))
	for _, tx := range list {
		if _, dup := seen[tx.ID]; dup {
			return &DuplicateIDError{Source: source, ID: tx.ID}
		}
		seen[tx.ID] = struct{}{}
	}
	return nil
}

// isPerfect applies the perfect-match classification: the combined score
// must clear the threshold and no individual signal may sit below its
// minor-discrepancy floor.
func isPerfect(s Scores, cfg Config) bool {
	return s.Combined >= cfg.PerfectThreshold &&
		s.Name >= cfg.NameFloor &&
		s.Amount >= cfg.AmountFloor &&
		s.Date >= cfg.DateFloor
}

// discrepancyReason names the signals that kept an assigned pair out of
// the perfect bucket, using the actual remaining deltas. Name differences
// that normalization already reconciles score 1.0 and therefore never
// appear here.
func discrepancyReason(a, b Transaction, c candidate, cfg Config) string {
	var parts []string

	if c.scores.Amount < cfg.AmountFloor {
		diff := a.Amount.Sub(b.Amount).Abs()
		parts = append(parts, fmt.Sprintf("amount differs by S$%s", diff.StringFixed(2)))
	}
	if c.scores.Name < cfg.NameFloor {
		parts = append(parts, fmt.Sprintf("name differs: %q vs %q", a.Name, b.Name))
	}
	if c.scores.Date < cfg.DateFloor {
		unit := "days"
		if c.dayDiff == 1 {
			unit = "day"
		}
		parts = append(parts, fmt.Sprintf("dates differ by %d %s", c.dayDiff, unit))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("combined similarity %.0f%% requires review", c.scores.Combined*100)
	}
	return strings.Join(parts, "; ")
}
