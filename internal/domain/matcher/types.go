package matcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// ErrInvalidConfig is returned when a Config fails validation
var ErrInvalidConfig = errors.New("invalid matcher config")

// Direction selects which side of the reconciliation drives the greedy pass
type Direction string

const (
	// DriveByExpense iterates expenses and scores each against the open bookings
	DriveByExpense Direction = "expense"
	// DriveByBooking iterates bookings and scores each against the open expenses
	DriveByBooking Direction = "booking"
)

// ParseDirection converts a config value to a Direction.
// An empty value selects DriveByExpense.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", DriveByExpense, "expenses":
		return DriveByExpense, nil
	case DriveByBooking, "bookings":
		return DriveByBooking, nil
	default:
		return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidConfig, s)
	}
}

// Config holds matcher configuration
type Config struct {
	MinConfidence         float64   // Default: 0.15 (whole-dataset pass)
	CategoryMinConfidence float64   // Default: 0.30 (single-category pass)
	Direction             Direction // Default: DriveByExpense
	BatchSize             int       // Expenses per scheduler chunk (default: 50)
	ValidCardTypes        []string  // Empty means every card type is accepted
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MinConfidence:         0.15,
		CategoryMinConfidence: 0.30,
		Direction:             DriveByExpense,
		BatchSize:             50,
	}
}

// Validate checks thresholds, batch size and direction
func (c Config) Validate() error {
	if !inUnitRange(c.MinConfidence) {
		return fmt.Errorf("%w: min confidence %.2f outside [0,1]", ErrInvalidConfig, c.MinConfidence)
	}
	if !inUnitRange(c.CategoryMinConfidence) {
		return fmt.Errorf("%w: category min confidence %.2f outside [0,1]", ErrInvalidConfig, c.CategoryMinConfidence)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	}
	if c.Direction != DriveByExpense && c.Direction != DriveByBooking {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidConfig, c.Direction)
	}
	return nil
}

// inUnitRange rejects NaN along with values outside [0,1]
func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

// ForCategory returns a copy that uses the single-category threshold
func (c Config) ForCategory() Config {
	c.MinConfidence = c.CategoryMinConfidence
	return c
}

// Assignment is the outcome of one matching run
type Assignment struct {
	// Matches in the order their driving records were processed
	Matches []records.MatchResult
	// FallbackIDs lists positional keys substituted for records without an ID.
	// A non-empty list means the run operated in degraded mode.
	FallbackIDs []string
}

// Degraded reports whether any record had to be keyed by position
func (a *Assignment) Degraded() bool {
	return len(a.FallbackIDs) > 0
}

// BookingKey returns the key a booking is consumed under: its ID, or its
// position in the input when the ID is blank. The bool reports a fallback.
func BookingKey(id string, index int) (string, bool) {
	if strings.TrimSpace(id) != "" {
		return id, false
	}
	return fmt.Sprintf("booking at index %d", index), true
}

// ExpenseKey is BookingKey for expenses
func ExpenseKey(id string, index int) (string, bool) {
	if strings.TrimSpace(id) != "" {
		return id, false
	}
	return fmt.Sprintf("expense at index %d", index), true
}
