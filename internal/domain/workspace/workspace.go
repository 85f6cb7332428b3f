// Package workspace applies human resolution decisions to a
// reconciliation result. Every operation is a pure transformation from
// one result snapshot to a new one; nothing is mutated in place, so a
// caller can retain the full decision history for audit or undo.
package workspace

import (
	"errors"
	"fmt"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
)

// ErrMatchNotFound means the referenced pair is not (or no longer) in the
// partial-match list, typically because another reviewer already resolved
// it. Callers should treat it as a refresh signal, not a failure.
var ErrMatchNotFound = errors.New("partial match not found")

// Action is a reviewer decision kind.
type Action string

const (
	// ActionConfirm accepts a partial match as a true match.
	ActionConfirm Action = "confirm"
	// ActionFlag marks a partial match reviewed-and-disputed without
	// moving it.
	ActionFlag Action = "flag"
)

// Decision identifies a partial match by its transaction IDs and the
// action to take on it.
type Decision struct {
	Action    Action `json:"action"`
	SourceAID string `json:"sourceAId"`
	SourceBID string `json:"sourceBId"`
}

// Apply dispatches a decision, returning the new result snapshot.
func Apply(r *recon.Result, d Decision) (*recon.Result, error) {
	switch d.Action {
	case ActionConfirm:
		return Confirm(r, d.SourceAID, d.SourceBID)
	case ActionFlag:
		return Flag(r, d.SourceAID, d.SourceBID)
	default:
		return nil, fmt.Errorf("unknown resolution action %q", d.Action)
	}
}

// Confirm promotes the identified partial match to a perfect match,
// stripped of its reason and confidence score. The partition of both
// source lists is preserved: the pair moves between buckets, nothing is
// added or lost.
func Confirm(r *recon.Result, aID, bID string) (*recon.Result, error) {
	idx := findPartial(r, aID, bID)
	if idx < 0 {
		return nil, ErrMatchNotFound
	}

	out := r.Clone()
	promoted := out.PartialMatches[idx].Pair()
	out.PartialMatches = append(out.PartialMatches[:idx], out.PartialMatches[idx+1:]...)
	out.PerfectMatches = append(out.PerfectMatches, promoted)
	return out, nil
}

// Flag marks the identified partial match as disputed. The pair stays in
// the partial-match list unchanged apart from the marker, so the partition
// invariant is untouched and a later Confirm still works.
func Flag(r *recon.Result, aID, bID string) (*recon.Result, error) {
	idx := findPartial(r, aID, bID)
	if idx < 0 {
		return nil, ErrMatchNotFound
	}

	out := r.Clone()
	out.PartialMatches[idx].Flagged = true
	return out, nil
}

func findPartial(r *recon.Result, aID, bID string) int {
	for i, pm := range r.PartialMatches {
		if pm.SourceA.ID == aID && pm.SourceB.ID == bID {
			return i
		}
	}
	return -1
}
