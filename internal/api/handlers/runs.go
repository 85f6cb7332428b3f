package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/donorops/reconcile-backend/internal/api/dto"
	"github.com/donorops/reconcile-backend/internal/domain/summary"
	"github.com/donorops/reconcile-backend/internal/infrastructure/storage"
)

// RunsHandler handles run-history HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/runs - returns the most recent runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	responses := make([]dto.RunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, dto.NewRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  responses,
		"count": len(responses),
	})
}

// Get handles GET /api/runs/{id} - returns a run with its current result
// state and summary.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.repo.GetRun(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}

	snap, err := h.repo.LatestSnapshot(id)
	if err != nil || snap == nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunDetailResponse{
		Run:     dto.NewRunResponse(run),
		Seq:     snap.Seq,
		Result:  snap.Result,
		Summary: summary.Compute(snap.Result),
	}
	h.WriteJSON(w, http.StatusOK, response)
}

// History handles GET /api/runs/{id}/history - returns a run's full
// snapshot chain in sequence order.
func (h *RunsHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.repo.GetRun(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}

	snaps, err := h.repo.ListSnapshots(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	responses := make([]dto.SnapshotResponse, 0, len(snaps))
	for _, snap := range snaps {
		responses = append(responses, dto.NewSnapshotResponse(snap))
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runId":     id,
		"snapshots": responses,
		"count":     len(responses),
	})
}

// Summary handles GET /api/runs/{id}/summary - returns aggregate figures
// for a run's current state.
func (h *RunsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := h.repo.LatestSnapshot(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if snap == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}

	h.WriteJSON(w, http.StatusOK, summary.Compute(snap.Result))
}
