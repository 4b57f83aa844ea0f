package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	order   []string // run IDs by start
	matches map[string][]records.MatchResult

	// Hooks for test assertions
	StartRunCalled    bool
	CompleteRunCalled bool
	FailRunCalled     bool
	SaveMatchesCalled bool
	LastSummary       *RunSummary
	LastFailReason    string

	// Error injection for testing error paths
	StartRunErr    error
	CompleteRunErr error
	FailRunErr     error
	GetRunErr      error
	ListRunsErr    error
	SaveMatchesErr error
	GetMatchesErr  error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:    make(map[string]*Run),
		matches: make(map[string][]records.MatchResult),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// StartRun stores a running run
func (m *MockRepository) StartRun(params RunParams) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartRunCalled = true
	if m.StartRunErr != nil {
		return nil, m.StartRunErr
	}

	run := &Run{
		ID:            uuid.NewString(),
		Strategy:      params.Strategy,
		Direction:     params.Direction,
		Category:      params.Category,
		MinConfidence: params.MinConfidence,
		BookingCount:  params.BookingCount,
		ExpenseCount:  params.ExpenseCount,
		Status:        RunStatusRunning,
		StartedAt:     time.Now().UTC(),
	}
	m.runs[run.ID] = run
	m.order = append(m.order, run.ID)

	copied := *run
	return &copied, nil
}

// CompleteRun stores the summary in memory
func (m *MockRepository) CompleteRun(runID string, summary RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteRunCalled = true
	m.LastSummary = &summary
	if m.CompleteRunErr != nil {
		return m.CompleteRunErr
	}

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	now := time.Now().UTC()
	run.RunSummary = summary
	run.Status = RunStatusCompleted
	run.CompletedAt = &now
	return nil
}

// FailRun marks the run failed in memory
func (m *MockRepository) FailRun(runID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FailRunCalled = true
	m.LastFailReason = reason
	if m.FailRunErr != nil {
		return m.FailRunErr
	}

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	now := time.Now().UTC()
	run.Status = RunStatusFailed
	run.ErrorMessage = reason
	run.CompletedAt = &now
	return nil
}

// GetRun returns a copy of the stored run
func (m *MockRepository) GetRun(runID string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	copied := *run
	return &copied, nil
}

// ListRuns returns runs newest first
func (m *MockRepository) ListRuns(limit int) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListRunsErr != nil {
		return nil, m.ListRunsErr
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	runs := []Run{}
	for i := len(m.order) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, *m.runs[m.order[i]])
	}
	return runs, nil
}

// SaveMatches replaces the run's matches
func (m *MockRepository) SaveMatches(runID string, matches []records.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveMatchesCalled = true
	if m.SaveMatchesErr != nil {
		return m.SaveMatchesErr
	}
	if _, ok := m.runs[runID]; !ok {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	copied := make([]records.MatchResult, len(matches))
	copy(copied, matches)
	m.matches[runID] = copied
	return nil
}

// GetMatches returns the run's matches in stored order
func (m *MockRepository) GetMatches(runID string) ([]records.MatchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetMatchesErr != nil {
		return nil, m.GetMatchesErr
	}
	out := make([]records.MatchResult, len(m.matches[runID]))
	copy(out, m.matches[runID])
	return out, nil
}

// RunCount returns the number of stored runs
func (m *MockRepository) RunCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}
