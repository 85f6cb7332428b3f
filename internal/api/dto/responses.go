package dto

import (
	"time"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
	"github.com/donorops/reconcile-backend/internal/domain/summary"
	"github.com/donorops/reconcile-backend/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response with the current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RunResponse describes a stored reconciliation run.
type RunResponse struct {
	ID           string    `json:"id"`
	SourceAName  string    `json:"sourceAName"`
	SourceBName  string    `json:"sourceBName"`
	SourceACount int       `json:"sourceACount"`
	SourceBCount int       `json:"sourceBCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewRunResponse converts a storage run into its API shape.
func NewRunResponse(run *storage.Run) RunResponse {
	return RunResponse{
		ID:           run.ID,
		SourceAName:  run.SourceAName,
		SourceBName:  run.SourceBName,
		SourceACount: run.SourceACount,
		SourceBCount: run.SourceBCount,
		CreatedAt:    run.CreatedAt,
	}
}

// ReconcileResponse carries a freshly created run with its initial result.
type ReconcileResponse struct {
	Run     RunResponse     `json:"run"`
	Result  *recon.Result   `json:"result"`
	Summary summary.Summary `json:"summary"`
	// RowErrors reports CSV rows skipped during ingest, keyed by source label.
	RowErrors map[string][]string `json:"rowErrors,omitempty"`
}

// RunDetailResponse pairs a run with its latest result state.
type RunDetailResponse struct {
	Run     RunResponse     `json:"run"`
	Seq     int             `json:"seq"`
	Result  *recon.Result   `json:"result"`
	Summary summary.Summary `json:"summary"`
}

// SnapshotResponse describes one entry in a run's resolution history.
type SnapshotResponse struct {
	Seq       int           `json:"seq"`
	Action    string        `json:"action"`
	Result    *recon.Result `json:"result"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NewSnapshotResponse converts a storage snapshot into its API shape.
func NewSnapshotResponse(snap *storage.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Seq:       snap.Seq,
		Action:    snap.Action,
		Result:    snap.Result,
		CreatedAt: snap.CreatedAt,
	}
}
