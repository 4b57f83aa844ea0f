// Package matcher turns pairwise booking/expense scores into a one-to-one
// match set.
//
// The matcher is greedy, not globally optimal:
//   - Records on the driving side are visited in input order
//   - Each is scored against every counterpart not yet consumed
//   - The strictly highest score wins; ties go to the first-seen candidate
//   - A winner must score above 0 and at least MinConfidence
//
// Consumption is keyed by record ID, so no booking ID and no expense ID
// appears in more than one MatchResult.
//
// Example usage:
//
//	strategy, _ := scoring.ByName("auto")
//	m, err := matcher.NewMatcher(matcher.DefaultConfig(), strategy)
//	assignment := m.Assign(bookings, expenses)
//	for _, match := range assignment.Matches {
//		fmt.Println(match.ExpenseID, match.BookingID, match.Confidence)
//	}
package matcher

import (
	"errors"
	"fmt"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/scoring"
)

// Matcher pairs bookings with expenses using a scoring strategy
type Matcher struct {
	config   Config
	strategy scoring.Strategy
}

// NewMatcher creates a new matcher with the given config and strategy
func NewMatcher(config Config, strategy scoring.Strategy) (*Matcher, error) {
	if strategy == nil {
		return nil, errors.New("matcher: strategy is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{
		config:   config,
		strategy: strategy,
	}, nil
}

// Config returns the matcher's configuration
func (m *Matcher) Config() Config {
	return m.config
}

// Strategy returns the strategy used for scoring
func (m *Matcher) Strategy() scoring.Strategy {
	return m.strategy
}

// Assign runs one greedy pass over the configured driving side. Bookings
// with a card type outside ValidCardTypes never match.
func (m *Matcher) Assign(bookings []records.BookingRecord, expenses []records.ExpenseRecord) *Assignment {
	if m.config.Direction == DriveByBooking {
		return m.assignByBooking(bookings, expenses)
	}

	s := m.NewSession(bookings)
	for _, e := range expenses {
		s.MatchExpense(e)
	}
	return s.Assignment()
}

// accept applies the acceptance rule to the best score of a driving record
func (m *Matcher) accept(best scoring.Score) bool {
	return best.Value > 0 && best.Value >= m.config.MinConfidence
}

type expenseCandidate struct {
	record records.ExpenseRecord
	key    string
}

func (m *Matcher) assignByBooking(bookings []records.BookingRecord, expenses []records.ExpenseRecord) *Assignment {
	result := &Assignment{Matches: []records.MatchResult{}}
	fallbacks := newFallbackSet()

	candidates := make([]expenseCandidate, len(expenses))
	for i, e := range expenses {
		key, fallback := ExpenseKey(e.ID, i)
		if fallback {
			fallbacks.add(key)
		}
		candidates[i] = expenseCandidate{record: e, key: key}
	}

	allowed := cardTypeSet(m.config.ValidCardTypes)
	usedBookings := make(map[string]bool)
	usedExpenses := make(map[string]bool)

	for i, b := range bookings {
		bKey, fallback := BookingKey(b.ID, i)
		if fallback {
			fallbacks.add(bKey)
		}
		if usedBookings[bKey] || !cardTypeAllowed(allowed, b.CardType) {
			continue
		}

		bestIdx := -1
		var best scoring.Score
		for j, c := range candidates {
			if usedExpenses[c.key] {
				continue
			}
			score := m.strategy.Score(b, c.record)
			if bestIdx < 0 || score.Value > best.Value {
				bestIdx, best = j, score
			}
		}

		if bestIdx < 0 || !m.accept(best) {
			continue
		}

		eKey := candidates[bestIdx].key
		usedBookings[bKey] = true
		usedExpenses[eKey] = true
		result.Matches = append(result.Matches, newMatchResult(eKey, bKey, best))
	}

	result.FallbackIDs = fallbacks.list()
	return result
}

func newMatchResult(expenseID, bookingID string, s scoring.Score) records.MatchResult {
	reasons := make([]string, len(s.Reasons))
	copy(reasons, s.Reasons)
	return records.MatchResult{
		ExpenseID:  expenseID,
		BookingID:  bookingID,
		Confidence: s.Value,
		Reasons:    reasons,
	}
}

// fallbackSet collects positional keys in the order they were generated
type fallbackSet struct {
	seen map[string]bool
	keys []string
}

func newFallbackSet() *fallbackSet {
	return &fallbackSet{seen: make(map[string]bool)}
}

func (f *fallbackSet) add(key string) {
	if f.seen[key] {
		return
	}
	f.seen[key] = true
	f.keys = append(f.keys, key)
}

func (f *fallbackSet) list() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// String describes the matcher for log lines
func (m *Matcher) String() string {
	return fmt.Sprintf("matcher(strategy=%s, min=%.2f, direction=%s)",
		m.strategy.Name(), m.config.MinConfidence, m.config.Direction)
}
