package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/travel-reconcile/internal/api/dto"
	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/storage"
)

// RunsHandler handles recorded run requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(service *reconcile.Service) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(service),
	}
}

// List handles GET /api/runs - returns recorded runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", dto.DefaultRunListParams().Limit)

	runs, err := h.service.Runs(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}

	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a run with its matches.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, matches, err := h.service.RunDetail(id)
	if errors.Is(err, storage.ErrNotFound) {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.RunDetailResponse{
		RunResponse: toRunResponse(*run),
		Matches:     matches,
	})
}

// toRunResponse converts a storage Run to an API response.
func toRunResponse(run storage.Run) dto.RunResponse {
	response := dto.RunResponse{
		ID:                run.ID,
		Strategy:          run.Strategy,
		Direction:         run.Direction,
		Category:          run.Category,
		MinConfidence:     run.MinConfidence,
		BookingCount:      run.BookingCount,
		ExpenseCount:      run.ExpenseCount,
		MatchCount:        run.MatchCount,
		UnmatchedBookings: run.UnmatchedBookings,
		UnmatchedExpenses: run.UnmatchedExpenses,
		HighConfidence:    run.HighConfidence,
		MediumConfidence:  run.MediumConfidence,
		LowConfidence:     run.LowConfidence,
		AverageConfidence: run.AverageConfidence,
		Degraded:          run.Degraded,
		Status:            string(run.Status),
		ErrorMessage:      run.ErrorMessage,
		StartedAt:         run.StartedAt.Format(time.RFC3339),
	}
	if run.CompletedAt != nil {
		response.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}
	return response
}
