package matcher

import (
	"errors"
	"log/slog"
	"runtime"
	"strings"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// ErrUnsupportedDirection is returned when the scheduler is asked to run a
// booking-driven matcher. Chunking is defined over expenses only.
var ErrUnsupportedDirection = errors.New("scheduler requires expense-driven matching")

// Progress is reported after every chunk and once more when the run completes
type Progress struct {
	TotalExpenses     int  `json:"total_expenses"`
	ProcessedExpenses int  `json:"processed_expenses"`
	Matches           int  `json:"matches"`
	IsComplete        bool `json:"is_complete"`
}

// ProgressFunc receives progress updates. It may be nil.
type ProgressFunc func(Progress)

// Scheduler drives a Matcher over expenses in fixed-size chunks, yielding
// between chunks so other goroutines get a chance to run. It provides no
// parallelism and cannot be cancelled once started.
type Scheduler struct {
	matcher *Matcher
	yield   func()
	logger  *slog.Logger
}

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithYield replaces the inter-chunk yield (runtime.Gosched by default)
func WithYield(fn func()) SchedulerOption {
	return func(s *Scheduler) {
		if fn != nil {
			s.yield = fn
		}
	}
}

// WithLogger sets the logger used for chunk-level debug output
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a scheduler for m
func NewScheduler(m *Matcher, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		matcher: m,
		yield:   runtime.Gosched,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run filters bookings by card type once, then matches expenses chunk by
// chunk against the full filtered booking set. Matches are returned in
// processing order.
func (s *Scheduler) Run(bookings []records.BookingRecord, expenses []records.ExpenseRecord, onProgress ProgressFunc) (*Assignment, error) {
	cfg := s.matcher.config
	if cfg.Direction != DriveByExpense {
		return nil, ErrUnsupportedDirection
	}
	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	session := s.matcher.NewSession(bookings)

	s.logger.Debug("Starting batch run",
		"bookings", len(bookings),
		"eligible_bookings", len(session.bookings),
		"expenses", len(expenses),
		"batch_size", cfg.BatchSize,
		"strategy", s.matcher.strategy.Name())

	total := len(expenses)
	for start := 0; start < total; start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, total)
		for _, e := range expenses[start:end] {
			session.MatchExpense(e)
		}

		s.logger.Debug("Processed chunk",
			"from", start,
			"to", end,
			"matches", session.MatchCount())

		onProgress(Progress{
			TotalExpenses:     total,
			ProcessedExpenses: end,
			Matches:           session.MatchCount(),
		})

		if end < total {
			s.yield()
		}
	}

	onProgress(Progress{
		TotalExpenses:     total,
		ProcessedExpenses: total,
		Matches:           session.MatchCount(),
		IsComplete:        true,
	})

	return session.Assignment(), nil
}

// FilterByCardType keeps bookings whose card type is empty or listed in
// valid, compared case-insensitively. An empty valid list keeps everything.
func FilterByCardType(bookings []records.BookingRecord, valid []string) []records.BookingRecord {
	allowed := cardTypeSet(valid)
	out := make([]records.BookingRecord, 0, len(bookings))
	for _, b := range bookings {
		if cardTypeAllowed(allowed, b.CardType) {
			out = append(out, b)
		}
	}
	return out
}

func filterCandidates(cands []bookingCandidate, valid []string) []bookingCandidate {
	allowed := cardTypeSet(valid)
	out := make([]bookingCandidate, 0, len(cands))
	for _, c := range cands {
		if cardTypeAllowed(allowed, c.record.CardType) {
			out = append(out, c)
		}
	}
	return out
}

func cardTypeSet(valid []string) map[string]bool {
	set := make(map[string]bool, len(valid))
	for _, v := range valid {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = true
		}
	}
	return set
}

func cardTypeAllowed(allowed map[string]bool, cardType string) bool {
	if len(allowed) == 0 {
		return true
	}
	ct := strings.ToLower(strings.TrimSpace(cardType))
	return ct == "" || allowed[ct]
}
