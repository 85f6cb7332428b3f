package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/donorops/reconcile-backend/internal/api/dto"
	"github.com/donorops/reconcile-backend/internal/domain/recon"
	"github.com/donorops/reconcile-backend/internal/domain/summary"
	"github.com/donorops/reconcile-backend/internal/infrastructure/storage"
	"github.com/donorops/reconcile-backend/internal/ingest"
)

// maxUploadBytes caps CSV uploads at 10 MiB per request.
const maxUploadBytes = 10 << 20

// ReconcileHandler runs the matching engine on submitted transaction lists
// and stores the result as a new run.
type ReconcileHandler struct {
	*Base
	engineCfg recon.Config
	logger    *slog.Logger
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(repo storage.Repository, engineCfg recon.Config, logger *slog.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		Base:      NewBase(repo),
		engineCfg: engineCfg,
		logger:    logger,
	}
}

// Reconcile handles POST /api/reconcile - reconciles two JSON transaction
// lists and creates a run.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}
	if msg := req.Validate(); msg != "" {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(msg))
		return
	}

	h.runAndStore(w, req.SourceAName, req.SourceBName, req.SourceA, req.SourceB, nil)
}

// ReconcileCSV handles POST /api/reconcile/csv - reconciles two uploaded
// CSV files (multipart form fields "sourceA" and "sourceB").
func (h *ReconcileHandler) ReconcileCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid multipart form"))
		return
	}

	fileA, headerA, err := r.FormFile("sourceA")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("sourceA file is required"))
		return
	}
	defer func() { _ = fileA.Close() }()

	fileB, headerB, err := r.FormFile("sourceB")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("sourceB file is required"))
		return
	}
	defer func() { _ = fileB.Close() }()

	sourceA, errsA, err := ingest.ReadProcessorCSV(fileA)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("sourceA: "+err.Error()))
		return
	}
	sourceB, errsB, err := ingest.ReadLedgerCSV(fileB)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("sourceB: "+err.Error()))
		return
	}

	rowErrors := map[string][]string{}
	for _, re := range errsA {
		rowErrors["sourceA"] = append(rowErrors["sourceA"], re.Error())
	}
	for _, re := range errsB {
		rowErrors["sourceB"] = append(rowErrors["sourceB"], re.Error())
	}
	if len(rowErrors) == 0 {
		rowErrors = nil
	}

	h.runAndStore(w, headerA.Filename, headerB.Filename, sourceA, sourceB, rowErrors)
}

// runAndStore executes the engine and persists the run with its initial
// snapshot.
func (h *ReconcileHandler) runAndStore(w http.ResponseWriter, nameA, nameB string, sourceA, sourceB []recon.Transaction, rowErrors map[string][]string) {
	result, err := recon.Reconcile(sourceA, sourceB, h.engineCfg)
	if err != nil {
		// Only duplicate IDs abort a run; the submitted data is unusable.
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	// Bad dates are excluded, not fatal; report them the same way as
	// skipped CSV rows so the client can show what was left out.
	for _, de := range result.DateErrors {
		h.logger.Warn("transaction excluded", "source", de.Source, "id", de.ID, "error", de.Error())
		key := "sourceA"
		if de.Source == "B" {
			key = "sourceB"
		}
		if rowErrors == nil {
			rowErrors = map[string][]string{}
		}
		rowErrors[key] = append(rowErrors[key], de.Error())
	}

	run := &storage.Run{
		ID:           uuid.NewString(),
		SourceAName:  nameA,
		SourceBName:  nameB,
		SourceACount: len(sourceA),
		SourceBCount: len(sourceB),
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.repo.CreateRun(run, result); err != nil {
		h.logger.Error("failed to store run", "error", err)
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.logger.Info("run created",
		"run_id", run.ID,
		"perfect", len(result.PerfectMatches),
		"partial", len(result.PartialMatches),
		"unmatched_a", len(result.UnmatchedA),
		"unmatched_b", len(result.UnmatchedB),
	)

	response := dto.ReconcileResponse{
		Run:       dto.NewRunResponse(run),
		Result:    result,
		Summary:   summary.Compute(result),
		RowErrors: rowErrors,
	}
	h.WriteJSON(w, http.StatusCreated, response)
}
