package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/donorops/reconcile-backend/internal/api/dto"
	"github.com/donorops/reconcile-backend/internal/domain/summary"
	"github.com/donorops/reconcile-backend/internal/domain/workspace"
	"github.com/donorops/reconcile-backend/internal/infrastructure/storage"
)

// ResolutionHandler applies confirm and flag decisions to a run's current
// state and appends the outcome as the next snapshot.
type ResolutionHandler struct {
	*Base
	logger *slog.Logger
}

// NewResolutionHandler creates a new resolution handler.
func NewResolutionHandler(repo storage.Repository, logger *slog.Logger) *ResolutionHandler {
	return &ResolutionHandler{
		Base:   NewBase(repo),
		logger: logger,
	}
}

// Confirm handles POST /api/runs/{id}/confirm - promotes a partial match
// to a perfect match.
func (h *ResolutionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, workspace.ActionConfirm)
}

// Flag handles POST /api/runs/{id}/flag - marks a partial match as a
// genuine discrepancy.
func (h *ResolutionHandler) Flag(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, workspace.ActionFlag)
}

func (h *ResolutionHandler) resolve(w http.ResponseWriter, r *http.Request, action workspace.Action) {
	runID := chi.URLParam(r, "id")

	var req dto.ResolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}
	if msg := req.Validate(); msg != "" {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(msg))
		return
	}

	run, err := h.repo.GetRun(runID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}

	snap, err := h.repo.LatestSnapshot(runID)
	if err != nil || snap == nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	decision := workspace.Decision{
		Action:    action,
		SourceAID: req.SourceAID,
		SourceBID: req.SourceBID,
	}
	next, err := workspace.Apply(snap.Result, decision)
	if err != nil {
		if errors.Is(err, workspace.ErrMatchNotFound) {
			// The referenced pair is gone, most likely resolved from
			// another tab. The run itself is intact.
			h.WriteError(w, http.StatusConflict, dto.MatchNotFoundError())
			return
		}
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	stored, err := h.repo.AppendSnapshot(runID, string(action), next)
	if err != nil {
		h.logger.Error("failed to append snapshot", "run_id", runID, "error", err)
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.logger.Info("resolution applied",
		"run_id", runID,
		"action", string(action),
		"seq", stored.Seq,
		"source_a_id", req.SourceAID,
		"source_b_id", req.SourceBID,
	)

	h.WriteJSON(w, http.StatusOK, dto.RunDetailResponse{
		Run:     dto.NewRunResponse(run),
		Seq:     stored.Seq,
		Result:  stored.Result,
		Summary: summary.Compute(stored.Result),
	})
}
