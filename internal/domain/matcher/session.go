package matcher

import (
	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/scoring"
)

// Session is an expense-driven assignment in progress. Expenses are fed one
// at a time and matched against the bookings the session was opened with;
// consumed bookings stay consumed for the rest of the session.
//
// A Session is not safe for concurrent use.
type Session struct {
	matcher      *Matcher
	bookings     []bookingCandidate
	usedBookings map[string]bool
	usedExpenses map[string]bool
	matches      []records.MatchResult
	fallbacks    *fallbackSet
	processed    int
}

type bookingCandidate struct {
	record records.BookingRecord
	key    string
}

// NewSession opens an expense-driven session over bookings. Bookings whose
// card type is not in ValidCardTypes are dropped once, here.
func (m *Matcher) NewSession(bookings []records.BookingRecord) *Session {
	s := m.newSession()
	s.bookings = filterCandidates(s.keyBookings(bookings), m.config.ValidCardTypes)
	return s
}

func (m *Matcher) newSession() *Session {
	return &Session{
		matcher:      m,
		usedBookings: make(map[string]bool),
		usedExpenses: make(map[string]bool),
		matches:      []records.MatchResult{},
		fallbacks:    newFallbackSet(),
	}
}

// keyBookings assigns each booking its consumption key by input position
func (s *Session) keyBookings(bookings []records.BookingRecord) []bookingCandidate {
	out := make([]bookingCandidate, len(bookings))
	for i, b := range bookings {
		key, fallback := BookingKey(b.ID, i)
		if fallback {
			s.fallbacks.add(key)
		}
		out[i] = bookingCandidate{record: b, key: key}
	}
	return out
}

// MatchExpense scores e against every open booking and records the best
// one when it clears the threshold. The expense's positional index is the
// number of expenses fed to the session before it.
func (s *Session) MatchExpense(e records.ExpenseRecord) (records.MatchResult, bool) {
	eKey, fallback := ExpenseKey(e.ID, s.processed)
	s.processed++
	if fallback {
		s.fallbacks.add(eKey)
	}
	if s.usedExpenses[eKey] {
		return records.MatchResult{}, false
	}

	bestIdx := -1
	var best scoring.Score
	for i, c := range s.bookings {
		if s.usedBookings[c.key] {
			continue
		}
		score := s.matcher.strategy.Score(c.record, e)
		if bestIdx < 0 || score.Value > best.Value {
			bestIdx, best = i, score
		}
	}

	if bestIdx < 0 || !s.matcher.accept(best) {
		return records.MatchResult{}, false
	}

	bKey := s.bookings[bestIdx].key
	s.usedBookings[bKey] = true
	s.usedExpenses[eKey] = true

	match := newMatchResult(eKey, bKey, best)
	s.matches = append(s.matches, match)
	return match, true
}

// Processed returns how many expenses have been fed to the session
func (s *Session) Processed() int {
	return s.processed
}

// MatchCount returns the number of matches accepted so far
func (s *Session) MatchCount() int {
	return len(s.matches)
}

// Assignment snapshots the session's results
func (s *Session) Assignment() *Assignment {
	matches := make([]records.MatchResult, len(s.matches))
	copy(matches, s.matches)
	return &Assignment{
		Matches:     matches,
		FallbackIDs: s.fallbacks.list(),
	}
}
