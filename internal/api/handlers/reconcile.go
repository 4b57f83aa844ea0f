package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/eshaffer321/travel-reconcile/internal/api/dto"
	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/travel-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/scoring"
)

// maxRequestBytes bounds POST /api/reconcile bodies
const maxRequestBytes = 32 << 20

// ReconcileHandler handles reconciliation requests.
type ReconcileHandler struct {
	*Base
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(service *reconcile.Service) *ReconcileHandler {
	return &ReconcileHandler{
		Base: NewBase(service),
	}
}

// Reconcile handles POST /api/reconcile. With "async": true the run is
// started in the background and 202 is returned with the job ID.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	category, ok := parseCategory(req.Category)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("unknown category: "+req.Category))
		return
	}

	serviceReq := reconcile.Request{
		Bookings:      req.Bookings,
		Expenses:      req.Expenses,
		Strategy:      req.Strategy,
		MinConfidence: req.MinConfidence,
		BatchSize:     req.BatchSize,
		Record:        req.Record,
	}

	if req.Async {
		jobID, err := h.service.Start(r.Context(), category, serviceReq)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusAccepted, dto.StartJobResponse{
			JobID:  jobID,
			Status: string(reconcile.JobPending),
		})
		return
	}

	var (
		report *reconcile.Report
		err    error
	)
	if category == "" {
		report, err = h.service.Reconcile(r.Context(), serviceReq)
	} else {
		report, err = h.service.ReconcileCategory(r.Context(), category, serviceReq)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toReportResponse(report))
}

// Strategies handles GET /api/strategies - lists accepted strategy names.
func (h *ReconcileHandler) Strategies(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, dto.StrategiesResponse{
		Strategies: scoring.Names(),
		Default:    h.service.DefaultStrategy(),
	})
}

// writeServiceError maps request-level validation failures to 400
func (h *ReconcileHandler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, matcher.ErrInvalidConfig) || errors.Is(err, scoring.ErrUnknownStrategy) {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
}

// parseCategory accepts an empty value (whole dataset) or a known category.
// ParseCategory maps unknown labels to Other, so only an explicit "other"
// selects that category.
func parseCategory(s string) (records.Category, bool) {
	if strings.TrimSpace(s) == "" {
		return "", true
	}
	c := records.ParseCategory(s)
	if c == records.CategoryOther && !strings.EqualFold(strings.TrimSpace(s), string(records.CategoryOther)) {
		return "", false
	}
	return c, true
}

// toReportResponse converts a service report to an API response.
func toReportResponse(report *reconcile.Report) dto.ReportResponse {
	byCategory := make(map[string]int, len(report.ByCategory))
	for c, n := range report.ByCategory {
		byCategory[string(c)] = n
	}
	return dto.ReportResponse{
		RunID:             report.RunID,
		Strategy:          report.Strategy,
		Direction:         string(report.Direction),
		Category:          string(report.Category),
		MinConfidence:     report.MinConfidence,
		Matches:           report.Matches,
		UnmatchedBookings: report.UnmatchedBookings,
		UnmatchedExpenses: report.UnmatchedExpenses,
		Stats:             report.Stats,
		ByCategory:        byCategory,
		FallbackIDs:       report.FallbackIDs,
		DurationMS:        report.Duration.Milliseconds(),
	}
}
