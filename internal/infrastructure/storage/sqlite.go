package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// Storage provides SQLite database access for reconciliation runs.
// It implements the Repository interface.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	return NewStorageWithLogger(dbPath, nil)
}

// NewStorageWithLogger is NewStorage with migration output sent to logger
func NewStorageWithLogger(dbPath string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps the PRAGMA below in effect
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// StartRun inserts a running run with a new UUID
func (s *Storage) StartRun(params RunParams) (*Run, error) {
	run := &Run{
		ID:            uuid.NewString(),
		Strategy:      params.Strategy,
		Direction:     params.Direction,
		Category:      params.Category,
		MinConfidence: params.MinConfidence,
		BookingCount:  params.BookingCount,
		ExpenseCount:  params.ExpenseCount,
		Status:        RunStatusRunning,
		StartedAt:     s.now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO reconciliation_runs
		(id, strategy, direction, category, min_confidence, booking_count, expense_count, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Strategy, run.Direction, run.Category, run.MinConfidence,
		run.BookingCount, run.ExpenseCount, run.Status, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// CompleteRun records the summary of a finished run
func (s *Storage) CompleteRun(runID string, summary RunSummary) error {
	result, err := s.db.Exec(`
		UPDATE reconciliation_runs
		SET match_count = ?, unmatched_bookings = ?, unmatched_expenses = ?,
		    high_confidence = ?, medium_confidence = ?, low_confidence = ?,
		    average_confidence = ?, degraded = ?, status = ?, completed_at = ?
		WHERE id = ?
	`, summary.MatchCount, summary.UnmatchedBookings, summary.UnmatchedExpenses,
		summary.HighConfidence, summary.MediumConfidence, summary.LowConfidence,
		summary.AverageConfidence, summary.Degraded, RunStatusCompleted, s.now(), runID)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	return requireAffected(result, runID)
}

// FailRun marks a run failed
func (s *Storage) FailRun(runID string, reason string) error {
	result, err := s.db.Exec(`
		UPDATE reconciliation_runs
		SET status = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`, RunStatusFailed, reason, s.now(), runID)
	if err != nil {
		return fmt.Errorf("failed to mark run %s failed: %w", runID, err)
	}
	return requireAffected(result, runID)
}

func requireAffected(result sql.Result, runID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

const runColumns = `
	id, strategy, direction, category, min_confidence, booking_count, expense_count,
	match_count, unmatched_bookings, unmatched_expenses,
	high_confidence, medium_confidence, low_confidence, average_confidence, degraded,
	status, error_message, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var completedAt sql.NullTime
	err := row.Scan(
		&run.ID, &run.Strategy, &run.Direction, &run.Category, &run.MinConfidence,
		&run.BookingCount, &run.ExpenseCount,
		&run.MatchCount, &run.UnmatchedBookings, &run.UnmatchedExpenses,
		&run.HighConfidence, &run.MediumConfidence, &run.LowConfidence,
		&run.AverageConfidence, &run.Degraded,
		&run.Status, &run.ErrorMessage, &run.StartedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM reconciliation_runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns recent runs, newest first
func (s *Storage) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(`
		SELECT `+runColumns+`
		FROM reconciliation_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// SaveMatches replaces the stored matches of a run in one transaction
func (s *Storage) SaveMatches(runID string, matches []records.MatchResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM reconciliation_runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}

	if _, err := tx.Exec(`DELETE FROM match_results WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear matches for run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO match_results (run_id, position, expense_id, booking_id, confidence, reasons_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range matches {
		reasons := m.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		reasonsJSON, err := json.Marshal(reasons)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(runID, i, m.ExpenseID, m.BookingID, m.Confidence, string(reasonsJSON)); err != nil {
			return fmt.Errorf("failed to save match %d for run %s: %w", i, runID, err)
		}
	}

	return tx.Commit()
}

// GetMatches returns the matches of a run in processing order
func (s *Storage) GetMatches(runID string) ([]records.MatchResult, error) {
	rows, err := s.db.Query(`
		SELECT expense_id, booking_id, confidence, reasons_json
		FROM match_results
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches for run %s: %w", runID, err)
	}
	defer rows.Close()

	matches := []records.MatchResult{}
	for rows.Next() {
		var m records.MatchResult
		var reasonsJSON string
		if err := rows.Scan(&m.ExpenseID, &m.BookingID, &m.Confidence, &reasonsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(reasonsJSON), &m.Reasons); err != nil {
			return nil, fmt.Errorf("corrupt reasons for run %s: %w", runID, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
