// Package summary derives dashboard statistics from a reconciliation
// result snapshot.
package summary

import (
	"github.com/shopspring/decimal"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
)

// Summary holds the dashboard figures for one result snapshot.
//
// UnreconciledAmount is the average of the two unmatched-side sums. That
// is deliberately a rough estimate carried over from the product's
// dashboard, not an authoritative financial figure: the two sums describe
// different source systems and averaging them has no accounting meaning.
type Summary struct {
	PerfectMatches     int             `json:"perfectMatches"`
	PartialMatches     int             `json:"partialMatches"`
	Unmatched          int             `json:"unmatched"`
	UnmatchedA         int             `json:"unmatchedA"`
	UnmatchedB         int             `json:"unmatchedB"`
	ReconciledAmount   decimal.Decimal `json:"reconciledAmount"`
	UnreconciledAmount decimal.Decimal `json:"unreconciledAmount"`
}

// Compute aggregates a result snapshot. Reconciled amount sums the source
// A amount of every assigned pair; the A side is used by convention since
// the two sides of a partial match may legitimately differ.
func Compute(r *recon.Result) Summary {
	reconciled := decimal.Zero
	for _, m := range r.PerfectMatches {
		reconciled = reconciled.Add(m.SourceA.Amount)
	}
	for _, m := range r.PartialMatches {
		reconciled = reconciled.Add(m.SourceA.Amount)
	}

	unmatchedA := decimal.Zero
	for _, tx := range r.UnmatchedA {
		unmatchedA = unmatchedA.Add(tx.Amount)
	}
	unmatchedB := decimal.Zero
	for _, tx := range r.UnmatchedB {
		unmatchedB = unmatchedB.Add(tx.Amount)
	}

	return Summary{
		PerfectMatches:     len(r.PerfectMatches),
		PartialMatches:     len(r.PartialMatches),
		Unmatched:          len(r.UnmatchedA) + len(r.UnmatchedB),
		UnmatchedA:         len(r.UnmatchedA),
		UnmatchedB:         len(r.UnmatchedB),
		ReconciledAmount:   reconciled,
		UnreconciledAmount: unmatchedA.Add(unmatchedB).Div(decimal.NewFromInt(2)),
	}
}
