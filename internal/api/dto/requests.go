package dto

import (
	"github.com/donorops/reconcile-backend/internal/domain/recon"
)

// ReconcileRequest carries two transaction lists to reconcile. Names are
// optional labels stored with the run for display purposes.
type ReconcileRequest struct {
	SourceAName string              `json:"sourceAName,omitempty"`
	SourceBName string              `json:"sourceBName,omitempty"`
	SourceA     []recon.Transaction `json:"sourceA"`
	SourceB     []recon.Transaction `json:"sourceB"`
}

// Validate checks the request for obvious problems before running the engine.
func (r *ReconcileRequest) Validate() string {
	if r.SourceA == nil {
		return "sourceA is required"
	}
	if r.SourceB == nil {
		return "sourceB is required"
	}
	return ""
}

// ResolutionRequest identifies the partial match a confirm or flag acts on.
// Both IDs are required so a reordered result cannot be resolved by accident.
type ResolutionRequest struct {
	SourceAID string `json:"sourceAId"`
	SourceBID string `json:"sourceBId"`
}

// Validate checks that both transaction IDs are present.
func (r *ResolutionRequest) Validate() string {
	if r.SourceAID == "" {
		return "sourceAId is required"
	}
	if r.SourceBID == "" {
		return "sourceBId is required"
	}
	return ""
}
