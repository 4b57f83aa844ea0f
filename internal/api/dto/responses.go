package dto

import (
	"time"

	"github.com/eshaffer321/travel-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	Strategy   string `json:"strategy"`
	History    bool   `json:"history"`
	ActiveJobs int    `json:"active_jobs"`
}

// ReportResponse is the outcome of a reconciliation.
type ReportResponse struct {
	RunID             string                  `json:"run_id,omitempty"`
	Strategy          string                  `json:"strategy"`
	Direction         string                  `json:"direction"`
	Category          string                  `json:"category,omitempty"`
	MinConfidence     float64                 `json:"min_confidence"`
	Matches           []records.MatchResult   `json:"matches"`
	UnmatchedBookings []records.BookingRecord `json:"unmatched_bookings"`
	UnmatchedExpenses []records.ExpenseRecord `json:"unmatched_expenses"`
	Stats             matcher.Stats           `json:"stats"`
	ByCategory        map[string]int          `json:"by_category"`
	FallbackIDs       []string                `json:"fallback_ids,omitempty"`
	DurationMS        int64                   `json:"duration_ms"`
}

// RunResponse represents a recorded run in API responses.
type RunResponse struct {
	ID                string  `json:"id"`
	Strategy          string  `json:"strategy"`
	Direction         string  `json:"direction"`
	Category          string  `json:"category,omitempty"`
	MinConfidence     float64 `json:"min_confidence"`
	BookingCount      int     `json:"booking_count"`
	ExpenseCount      int     `json:"expense_count"`
	MatchCount        int     `json:"match_count"`
	UnmatchedBookings int     `json:"unmatched_bookings"`
	UnmatchedExpenses int     `json:"unmatched_expenses"`
	HighConfidence    int     `json:"high_confidence"`
	MediumConfidence  int     `json:"medium_confidence"`
	LowConfidence     int     `json:"low_confidence"`
	AverageConfidence float64 `json:"average_confidence"`
	Degraded          bool    `json:"degraded"`
	Status            string  `json:"status"`
	ErrorMessage      string  `json:"error_message,omitempty"`
	StartedAt         string  `json:"started_at"`
	CompletedAt       string  `json:"completed_at,omitempty"`
}

// RunDetailResponse is a run together with its accepted matches.
type RunDetailResponse struct {
	RunResponse
	Matches []records.MatchResult `json:"matches"`
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// StrategiesResponse lists the accepted strategy names.
type StrategiesResponse struct {
	Strategies []string `json:"strategies"`
	Default    string   `json:"default"`
}

// NewHealthResponse reports the engine's default strategy, whether run
// history is being kept and how many background jobs are in flight.
func NewHealthResponse(strategy string, history bool, activeJobs int) HealthResponse {
	return HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Strategy:   strategy,
		History:    history,
		ActiveJobs: activeJobs,
	}
}
