// Package recon implements the deterministic reconciliation engine.
//
// The engine takes two independently sourced transaction lists (a
// payment-processor export and a donor-ledger export), scores candidate
// pairs on name, amount, date and reference similarity, and resolves them
// into a one-to-one assignment. Given identical inputs and configuration
// it always produces the identical result.
//
// Example usage:
//
//	cfg := recon.DefaultConfig()
//	result, err := recon.Reconcile(sourceA, sourceB, cfg)
//	if err != nil {
//		// duplicate transaction IDs, inputs rejected
//	}
//	for _, pm := range result.PartialMatches {
//		// queue for human review
//	}
package recon

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts serialize as JSON numbers, matching the report schema
	// consumed by the dashboard.
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction is a single record from either source list. Records are
// immutable once ingested; identity is ID scoped to the source list.
// Amount is the net, comparable value. When GrossAmount and Fee are both
// present, Amount equals GrossAmount minus Fee within rounding tolerance.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`

	// Source-specific provenance fields.
	PaymentMethod string           `json:"paymentMethod,omitempty"`
	GrossAmount   *decimal.Decimal `json:"grossAmount,omitempty"`
	Fee           *decimal.Decimal `json:"fee,omitempty"`
	PayoutID      string           `json:"payoutId,omitempty"`
	Campaign      string           `json:"campaign,omitempty"`
}

// MatchPair asserts that a source A transaction and a source B transaction
// describe the same real-world event.
type MatchPair struct {
	SourceA Transaction `json:"sourceA"`
	SourceB Transaction `json:"sourceB"`
}

// PartialMatch is an assigned pair with at least one discrepancy that needs
// human confirmation. Flagged is set by the resolution workspace when a
// reviewer disputes the pair; the matcher never sets it.
type PartialMatch struct {
	SourceA         Transaction `json:"sourceA"`
	SourceB         Transaction `json:"sourceB"`
	Reason          string      `json:"reason"`
	ConfidenceScore float64     `json:"confidenceScore"`
	Flagged         bool        `json:"flagged,omitempty"`
}

// Pair returns the match pair without review metadata.
func (p PartialMatch) Pair() MatchPair {
	return MatchPair{SourceA: p.SourceA, SourceB: p.SourceB}
}

// Result partitions both input lists: every source A transaction appears in
// exactly one of perfectMatches, partialMatches or unmatchedA, and
// symmetrically for source B. The partition holds after every resolution
// operation, not only after the initial matching run.
type Result struct {
	PerfectMatches []MatchPair    `json:"perfectMatches"`
	PartialMatches []PartialMatch `json:"partialMatches"`
	UnmatchedA     []Transaction  `json:"unmatchedA"`
	UnmatchedB     []Transaction  `json:"unmatchedB"`

	// DateErrors records the transactions excluded from matching because
	// their date would not parse, in input order (A first). The records
	// themselves sit in the unmatched lists; this is the report of why.
	// Per-run diagnostics, not part of the serialized partition.
	DateErrors []*InvalidDateError `json:"-"`
}

// Clone returns a copy of the result whose slices can be modified without
// affecting the receiver. Resolution operations build on this so every
// accepted decision yields a fresh snapshot.
func (r *Result) Clone() *Result {
	out := &Result{
		PerfectMatches: make([]MatchPair, len(r.PerfectMatches)),
		PartialMatches: make([]PartialMatch, len(r.PartialMatches)),
		UnmatchedA:     make([]Transaction, len(r.UnmatchedA)),
		UnmatchedB:     make([]Transaction, len(r.UnmatchedB)),
	}
	copy(out.PerfectMatches, r.PerfectMatches)
	copy(out.PartialMatches, r.PartialMatches)
	copy(out.UnmatchedA, r.UnmatchedA)
	copy(out.UnmatchedB, r.UnmatchedB)
	out.DateErrors = append([]*InvalidDateError(nil), r.DateErrors...)
	return out
}
