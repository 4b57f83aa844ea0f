// Package scoring computes a confidence score for one booking/expense pair.
//
// A Strategy combines the field comparisons from the similarity package into
// a weighted score in [0,1] together with human-readable reasons. Strategies
// only count a criterion when both records carry the fields it needs, so a
// missing field never lowers (or raises) a score.
//
// Available strategies:
//   - generic:       balanced weights for any travel category
//   - flight:        re-weighted toward card, carrier and route evidence
//   - flight-strict: flight scoring behind a hard card-last-4 gate
//   - auto:          flight scoring for flight-like pairs, generic otherwise
//
// Example usage:
//
//	strategy, err := scoring.ByName("auto")
//	score := strategy.Score(booking, expense)
//	fmt.Println(score.Value, score.Reasons)
package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// Strategy names accepted by ByName
const (
	NameGeneric      = "generic"
	NameFlight       = "flight"
	NameFlightStrict = "flight-strict"
	NameAuto         = "auto"
)

// ErrUnknownStrategy is returned by ByName for unrecognized names
var ErrUnknownStrategy = errors.New("unknown scoring strategy")

// Score is the outcome of comparing one booking with one expense
type Score struct {
	Value   float64  // 0-1, rounded to two decimals
	Reasons []string // one entry per criterion that contributed
}

// Strategy scores a single (booking, expense) pair
type Strategy interface {
	Name() string
	Score(b records.BookingRecord, e records.ExpenseRecord) Score
}

// ByName returns the strategy registered under name.
// An empty name selects the auto strategy.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameAuto:
		return NewAuto(), nil
	case NameGeneric:
		return NewGeneric(), nil
	case NameFlight:
		return NewFlight(), nil
	case NameFlightStrict, "strict":
		return NewStrictFlight(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Names lists the accepted strategy names in sorted order
func Names() []string {
	names := []string{NameGeneric, NameFlight, NameFlightStrict, NameAuto}
	sort.Strings(names)
	return names
}

// accumulator is the weighted-sum bookkeeping shared by all strategies.
// Every applicable criterion adds its weight to max; only criteria that
// clear their threshold add weight*subscore to total.
type accumulator struct {
	total   float64
	max     float64
	reasons []string
}

// add records an applicable criterion
func (a *accumulator) add(weight, subscore float64, passed bool, reason string) {
	a.max += weight
	if !passed {
		return
	}
	a.total += weight * subscore
	if reason != "" {
		a.reasons = append(a.reasons, reason)
	}
}

// note appends a reason without affecting the score
func (a *accumulator) note(reason string) {
	a.reasons = append(a.reasons, reason)
}

// score returns total/max scaled by factor and rounded to two decimals
func (a *accumulator) score(factor float64) Score {
	if a.max == 0 {
		return Score{Value: 0, Reasons: a.reasons}
	}
	return Score{
		Value:   round2(a.total / a.max * factor),
		Reasons: a.reasons,
	}
}

func round2(v float64) float64 {
	v = math.Round(v*100) / 100
	return math.Min(1, math.Max(0, v))
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// Auto routes flight-like pairs to flight scoring and everything else to
// generic scoring, using the same classification the flight strategy uses
// for its confidence penalty.
type Auto struct {
	generic *Generic
	flight  *Flight
}

// NewAuto creates an auto-selecting strategy with default weights
func NewAuto() *Auto {
	return &Auto{generic: NewGeneric(), flight: NewFlight()}
}

// Name implements Strategy
func (s *Auto) Name() string { return NameAuto }

// Score implements Strategy
func (s *Auto) Score(b records.BookingRecord, e records.ExpenseRecord) Score {
	if IsFlightCandidate(b, e) {
		return s.flight.Score(b, e)
	}
	return s.generic.Score(b, e)
}
