// Package reconcile runs the matching engine for callers: it resolves the
// strategy and thresholds, drives the batch scheduler, derives the report
// and records the run when a repository is configured.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eshaffer321/travel-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/scoring"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/storage"
)

// Request holds the inputs and per-run overrides of one reconciliation
type Request struct {
	Bookings []records.BookingRecord
	Expenses []records.ExpenseRecord

	Strategy      string   // empty uses the configured strategy
	MinConfidence *float64 // nil uses the configured threshold
	BatchSize     int      // 0 uses the configured batch size
	Record        bool     // store the run when a repository is configured

	OnProgress matcher.ProgressFunc
}

// Report is the outcome of one reconciliation
type Report struct {
	RunID             string                   `json:"run_id,omitempty"`
	Strategy          string                   `json:"strategy"`
	Direction         matcher.Direction        `json:"direction"`
	Category          records.Category         `json:"category,omitempty"`
	MinConfidence     float64                  `json:"min_confidence"`
	Matches           []records.MatchResult    `json:"matches"`
	UnmatchedBookings []records.BookingRecord  `json:"unmatched_bookings"`
	UnmatchedExpenses []records.ExpenseRecord  `json:"unmatched_expenses"`
	Stats             matcher.Stats            `json:"stats"`
	ByCategory        map[records.Category]int `json:"by_category"`
	FallbackIDs       []string                 `json:"fallback_ids,omitempty"`
	Duration          time.Duration            `json:"duration_ns"`
}

// Service runs reconciliations
type Service struct {
	matching matcher.Config
	strategy string
	repo     storage.Repository
	logger   *slog.Logger

	// Async job management
	jobs      map[string]*Job
	jobsMutex sync.RWMutex
}

// NewService creates a service from application config. repo may be nil,
// in which case runs are never recorded.
func NewService(cfg *config.Config, repo storage.Repository, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = config.LoadFromEnv()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	matching, err := cfg.MatcherConfig()
	if err != nil {
		return nil, err
	}
	strategy, err := scoring.ByName(cfg.Matching.Strategy)
	if err != nil {
		return nil, err
	}

	return &Service{
		matching: matching,
		strategy: strategy.Name(),
		repo:     repo,
		logger:   logger,
		jobs:     make(map[string]*Job),
	}, nil
}

// DefaultStrategy returns the strategy used when a request names none
func (s *Service) DefaultStrategy() string {
	return s.strategy
}

// RecordsRuns reports whether runs can be stored
func (s *Service) RecordsRuns() bool {
	return s.repo != nil
}

// Reconcile matches the request's expenses against its bookings using the
// whole-dataset threshold.
func (s *Service) Reconcile(ctx context.Context, req Request) (*Report, error) {
	return s.run(ctx, req, s.matching, "", nil)
}

// ReconcileCategory narrows the bookings to one category and matches with
// the single-category threshold. For flights the expenses are narrowed to
// those that look like air travel, and the flight strategy is the default.
//
// Records without an ID keep the positional key of their place in the
// caller's input, not in the narrowed lists.
func (s *Service) ReconcileCategory(ctx context.Context, category records.Category, req Request) (*Report, error) {
	req, positional := scopeToCategory(req, category)
	if category == records.CategoryFlight && req.Strategy == "" {
		req.Strategy = scoring.NameFlight
	}
	return s.run(ctx, req, s.matching.ForCategory(), category, positional)
}

// run matches req under base. positional lists IDs already filled in from
// input positions; they are reported as fallbacks and blanked again on the
// unmatched records.
func (s *Service) run(ctx context.Context, req Request, base matcher.Config, category records.Category, positional []string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, strategy, err := s.resolve(req, base)
	if err != nil {
		return nil, err
	}

	m, err := matcher.NewMatcher(cfg, strategy)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With("strategy", strategy.Name())
	if category != "" {
		logger = logger.With("category", string(category))
	}
	logger.Info("Starting reconciliation",
		"bookings", len(req.Bookings),
		"expenses", len(req.Expenses),
		"min_confidence", cfg.MinConfidence,
		"direction", string(cfg.Direction))

	var run *storage.Run
	if req.Record && s.repo != nil {
		run, err = s.repo.StartRun(storage.RunParams{
			Strategy:      strategy.Name(),
			Direction:     string(cfg.Direction),
			Category:      string(category),
			MinConfidence: cfg.MinConfidence,
			BookingCount:  len(req.Bookings),
			ExpenseCount:  len(req.Expenses),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	start := time.Now()
	onProgress := s.progressFunc(logger, req.OnProgress)

	assignment, err := s.assign(m, req, onProgress, logger)
	if err != nil {
		s.failRun(run, err, logger)
		return nil, err
	}

	fallbackIDs := append(append([]string{}, positional...), assignment.FallbackIDs...)
	unmatchedBookings := matcher.UnmatchedBookings(req.Bookings, assignment.Matches)
	unmatchedExpenses := matcher.UnmatchedExpenses(req.Expenses, assignment.Matches)
	clearPositionalIDs(unmatchedBookings, unmatchedExpenses, positional)

	report := &Report{
		Strategy:          strategy.Name(),
		Direction:         cfg.Direction,
		Category:          category,
		MinConfidence:     cfg.MinConfidence,
		Matches:           assignment.Matches,
		UnmatchedBookings: unmatchedBookings,
		UnmatchedExpenses: unmatchedExpenses,
		Stats:             matcher.Summarize(assignment.Matches),
		ByCategory:        matcher.CountByCategory(req.Bookings, assignment.Matches),
		FallbackIDs:       fallbackIDs,
		Duration:          time.Since(start),
	}

	if len(fallbackIDs) > 0 {
		logger.Warn("Records without IDs were keyed by position", "count", len(fallbackIDs))
	}

	if run != nil {
		report.RunID = run.ID
		if err := s.recordResult(run.ID, report); err != nil {
			s.failRun(run, err, logger)
			return nil, err
		}
	}

	logger.Info("Reconciliation complete",
		"matches", report.Stats.Total,
		"high", report.Stats.High,
		"medium", report.Stats.Medium,
		"low", report.Stats.Low,
		"unmatched_bookings", len(report.UnmatchedBookings),
		"unmatched_expenses", len(report.UnmatchedExpenses),
		"duration", report.Duration)

	return report, nil
}

// resolve applies request overrides on top of base
func (s *Service) resolve(req Request, base matcher.Config) (matcher.Config, scoring.Strategy, error) {
	cfg := base
	if req.MinConfidence != nil {
		cfg.MinConfidence = *req.MinConfidence
	}
	if req.BatchSize != 0 {
		cfg.BatchSize = req.BatchSize
	}
	if err := cfg.Validate(); err != nil {
		return matcher.Config{}, nil, err
	}

	name := req.Strategy
	if name == "" {
		name = s.strategy
	}
	strategy, err := scoring.ByName(name)
	if err != nil {
		return matcher.Config{}, nil, err
	}
	return cfg, strategy, nil
}

// assign uses the batch scheduler for expense-driven runs. Booking-driven
// runs are matched in one pass.
func (s *Service) assign(m *matcher.Matcher, req Request, onProgress matcher.ProgressFunc, logger *slog.Logger) (*matcher.Assignment, error) {
	if m.Config().Direction == matcher.DriveByExpense {
		scheduler := matcher.NewScheduler(m, matcher.WithLogger(logger))
		return scheduler.Run(req.Bookings, req.Expenses, onProgress)
	}

	assignment := m.Assign(req.Bookings, req.Expenses)
	onProgress(matcher.Progress{
		TotalExpenses:     len(req.Expenses),
		ProcessedExpenses: len(req.Expenses),
		Matches:           len(assignment.Matches),
		IsComplete:        true,
	})
	return assignment, nil
}

func (s *Service) progressFunc(logger *slog.Logger, next matcher.ProgressFunc) matcher.ProgressFunc {
	return func(p matcher.Progress) {
		logger.Debug("Progress",
			"processed", p.ProcessedExpenses,
			"total", p.TotalExpenses,
			"matches", p.Matches,
			"complete", p.IsComplete)
		if next != nil {
			next(p)
		}
	}
}

func (s *Service) recordResult(runID string, report *Report) error {
	if err := s.repo.SaveMatches(runID, report.Matches); err != nil {
		return fmt.Errorf("failed to save matches: %w", err)
	}
	err := s.repo.CompleteRun(runID, storage.RunSummary{
		MatchCount:        report.Stats.Total,
		UnmatchedBookings: len(report.UnmatchedBookings),
		UnmatchedExpenses: len(report.UnmatchedExpenses),
		HighConfidence:    report.Stats.High,
		MediumConfidence:  report.Stats.Medium,
		LowConfidence:     report.Stats.Low,
		AverageConfidence: report.Stats.AverageConfidence,
		Degraded:          len(report.FallbackIDs) > 0,
	})
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

func (s *Service) failRun(run *storage.Run, cause error, logger *slog.Logger) {
	if run == nil {
		return
	}
	if err := s.repo.FailRun(run.ID, cause.Error()); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Failed to mark run failed", "run_id", run.ID, "error", err)
	}
}

// Runs returns recorded runs, newest first
func (s *Service) Runs(limit int) ([]storage.Run, error) {
	if s.repo == nil {
		return []storage.Run{}, nil
	}
	return s.repo.ListRuns(limit)
}

// RunDetail returns a recorded run with its matches
func (s *Service) RunDetail(runID string) (*storage.Run, []records.MatchResult, error) {
	if s.repo == nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, storage.ErrNotFound)
	}
	run, err := s.repo.GetRun(runID)
	if err != nil {
		return nil, nil, err
	}
	matches, err := s.repo.GetMatches(runID)
	if err != nil {
		return nil, nil, err
	}
	return run, matches, nil
}
