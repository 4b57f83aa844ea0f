package dto

import "github.com/eshaffer321/travel-reconcile/internal/domain/records"

// ReconcileRequest is the request body for POST /api/reconcile.
type ReconcileRequest struct {
	Bookings      []records.BookingRecord `json:"bookings"`
	Expenses      []records.ExpenseRecord `json:"expenses"`
	Strategy      string                  `json:"strategy,omitempty"`       // generic, flight, flight-strict, auto
	Category      string                  `json:"category,omitempty"`       // reconcile a single category
	MinConfidence *float64                `json:"min_confidence,omitempty"` // overrides the configured threshold
	BatchSize     int                     `json:"batch_size,omitempty"`
	Record        bool                    `json:"record"` // store the run in history
	Async         bool                    `json:"async"`  // run in the background and return a job ID
}

// RunListParams represents query parameters for listing runs.
type RunListParams struct {
	Limit int `json:"limit"`
}

// DefaultRunListParams returns default values for run list params.
func DefaultRunListParams() RunListParams {
	return RunListParams{
		Limit: 20,
	}
}
