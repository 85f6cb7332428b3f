package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/donorops/reconcile-backend/internal/api/dto"
	"github.com/donorops/reconcile-backend/internal/infrastructure/storage"
	"github.com/donorops/reconcile-backend/internal/insights"
)

// InsightsHandler generates AI commentary over a run's current state.
type InsightsHandler struct {
	*Base
	generator insights.Generator
	logger    *slog.Logger
}

// NewInsightsHandler creates a new insights handler. The generator may be
// nil when insights are not configured.
func NewInsightsHandler(repo storage.Repository, generator insights.Generator, logger *slog.Logger) *InsightsHandler {
	return &InsightsHandler{
		Base:      NewBase(repo),
		generator: generator,
		logger:    logger,
	}
}

// Generate handles POST /api/runs/{id}/insights.
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		h.WriteError(w, http.StatusServiceUnavailable,
			dto.NewAPIError(dto.ErrCodeUnavailable, "insights are not configured"))
		return
	}

	runID := chi.URLParam(r, "id")
	snap, err := h.repo.LatestSnapshot(runID)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if snap == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}

	report, err := h.generator.Generate(r.Context(), snap.Result)
	if err != nil {
		if errors.Is(err, insights.ErrDisabled) {
			h.WriteError(w, http.StatusServiceUnavailable,
				dto.NewAPIError(dto.ErrCodeUnavailable, "insights are not configured"))
			return
		}
		h.logger.Error("insights generation failed", "run_id", runID, "error", err)
		h.WriteError(w, http.StatusBadGateway,
			dto.NewAPIError(dto.ErrCodeInternalError, "insights generation failed"))
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}
