package dto

import "github.com/eshaffer321/travel-reconcile/internal/domain/matcher"

// StartJobResponse is returned when a background reconciliation is started.
type StartJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobResponse represents a background reconciliation's status.
type JobResponse struct {
	JobID       string           `json:"job_id"`
	Status      string           `json:"status"`
	Category    string           `json:"category,omitempty"`
	StartedAt   string           `json:"started_at"`
	CompletedAt *string          `json:"completed_at,omitempty"`
	Progress    matcher.Progress `json:"progress"`
	Report      *ReportResponse  `json:"report,omitempty"`
	Error       *string          `json:"error,omitempty"`
}

// JobListResponse lists background reconciliations.
type JobListResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Count int           `json:"count"`
}
