package storage

import "github.com/eshaffer321/travel-reconcile/internal/domain/records"

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, in-memory mock)
// and makes testing the service and API layers straightforward.
type Repository interface {
	RunRepository
	MatchRepository
	Close() error
}

// RunRepository handles reconciliation run tracking
type RunRepository interface {
	// StartRun records the start of a run and returns it with a fresh ID
	StartRun(params RunParams) (*Run, error)

	// CompleteRun marks a run completed and stores its summary
	CompleteRun(runID string, summary RunSummary) error

	// FailRun marks a run failed with the given reason
	FailRun(runID string, reason string) error

	// GetRun retrieves a run by ID, returning ErrNotFound if absent
	GetRun(runID string) (*Run, error)

	// ListRuns returns the most recent runs first
	ListRuns(limit int) ([]Run, error)
}

// MatchRepository stores the matches produced by a run
type MatchRepository interface {
	// SaveMatches replaces the matches of a run, preserving their order
	SaveMatches(runID string, matches []records.MatchResult) error

	// GetMatches returns a run's matches in processing order
	GetMatches(runID string) ([]records.MatchResult, error)
}
