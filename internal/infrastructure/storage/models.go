package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a run does not exist
var ErrNotFound = errors.New("not found")

// RunStatus is the lifecycle state of a reconciliation run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded reconciliation run
type Run struct {
	ID            string     `json:"id"`
	Strategy      string     `json:"strategy"`
	Direction     string     `json:"direction"`
	Category      string     `json:"category,omitempty"`
	MinConfidence float64    `json:"min_confidence"`
	BookingCount  int        `json:"booking_count"`
	ExpenseCount  int        `json:"expense_count"`
	Status        RunStatus  `json:"status"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	// Filled in by CompleteRun
	RunSummary
}

// RunParams describes a run when it starts
type RunParams struct {
	Strategy      string
	Direction     string
	Category      string
	MinConfidence float64
	BookingCount  int
	ExpenseCount  int
}

// RunSummary holds the outcome counters of a completed run
type RunSummary struct {
	MatchCount        int     `json:"match_count"`
	UnmatchedBookings int     `json:"unmatched_bookings"`
	UnmatchedExpenses int     `json:"unmatched_expenses"`
	HighConfidence    int     `json:"high_confidence"`
	MediumConfidence  int     `json:"medium_confidence"`
	LowConfidence     int     `json:"low_confidence"`
	AverageConfidence float64 `json:"average_confidence"`
	Degraded          bool    `json:"degraded"`
}

// DefaultListLimit caps ListRuns when no limit is given
const DefaultListLimit = 50
