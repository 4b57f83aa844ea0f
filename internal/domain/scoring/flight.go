package scoring

import (
	"fmt"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/similarity"
)

// FlightWeights holds the criterion weights of the flight strategy
type FlightWeights struct {
	Card       float64
	Carrier    float64
	Reference  float64
	Route      float64
	Name       float64
	Amount     float64
	CardHolder float64
	Merchant   float64
	Currency   float64
	Date       float64
}

// DefaultFlightWeights returns the canonical flight weighting. Card digits
// dominate because they are the one identifier both systems share.
func DefaultFlightWeights() FlightWeights {
	return FlightWeights{
		Card:       30,
		Carrier:    25,
		Reference:  20,
		Route:      15,
		Name:       15,
		Amount:     15,
		CardHolder: 15,
		Merchant:   10,
		Currency:   10,
		Date:       10,
	}
}

const (
	// AmbiguousFlightPenalty scales scores for pairs that fail flight classification
	AmbiguousFlightPenalty = 0.7

	flightAmountThreshold  = 0.6
	routeThreshold         = 0.7
	partialReferenceCutoff = 0.8
)

// Flight scores flight bookings with flight-specific evidence
type Flight struct {
	weights FlightWeights
}

// NewFlight creates a flight strategy with default weights
func NewFlight() *Flight {
	return NewFlightWithWeights(DefaultFlightWeights())
}

// NewFlightWithWeights creates a flight strategy with custom weights
func NewFlightWithWeights(w FlightWeights) *Flight {
	return &Flight{weights: w}
}

// Name implements Strategy
func (s *Flight) Name() string { return NameFlight }

// Score implements Strategy. Pairs that do not look like flights are still
// scored, but the result is multiplied by AmbiguousFlightPenalty.
func (s *Flight) Score(b records.BookingRecord, e records.ExpenseRecord) Score {
	w := s.weights
	var acc accumulator

	if bc, ec := records.NormalizeCardLast4(b.CardLast4), records.NormalizeCardLast4(e.CardLast4); bc != "" && ec != "" {
		acc.add(w.Card, 1, bc == ec, "Card last 4 match: "+bc)
	}

	if bCode, ok := bookingCarrier(b); ok {
		if eCode, ok := expenseCarrier(e); ok {
			acc.add(w.Carrier, 1, bCode == eCode, "Carrier code match: "+bCode)
		}
	}

	if present(b.BookingReference) && present(e.Description) {
		sub, reason := referenceScore(b.BookingReference, e.Description)
		acc.add(w.Reference, sub, sub > 0, reason)
	}

	eo, ed := expenseRoute(e)
	if route := similarity.MatchRoute(b.Origin, b.Destination, eo, ed); route.Comparable {
		acc.add(w.Route, route.Score, route.Score > routeThreshold, routeReason(b, route))
	}

	if present(b.TravelerName) && present(e.EmployeeName) {
		sim := similarity.Similarity(b.TravelerName, e.EmployeeName)
		acc.add(w.Name, sim, sim > nameThreshold,
			fmt.Sprintf("Traveler name match: %s ~ %s (%s)", b.TravelerName, e.EmployeeName, pct(sim)))
	}

	if m := similarity.FlightAmountScore(b.Amount, e.Amount); m.Comparable {
		reason := fmt.Sprintf("Amount match: %s vs %s (%s)", b.Amount.Decimal.StringFixed(2), e.Amount.Decimal.StringFixed(2), pct(m.Score))
		if m.PartialPayment {
			reason = fmt.Sprintf("Partial payment: %s of %s", e.Amount.Decimal.StringFixed(2), b.Amount.Decimal.StringFixed(2))
		}
		acc.add(w.Amount, m.Score, m.Score > flightAmountThreshold, reason)
	}

	if present(b.CardHolderName) && present(e.EmployeeName) {
		sim := similarity.Similarity(b.CardHolderName, e.EmployeeName)
		acc.add(w.CardHolder, sim, sim > nameThreshold,
			fmt.Sprintf("Card holder match: %s (%s)", b.CardHolderName, pct(sim)))
	}

	if present(b.Merchant) && present(e.Vendor) {
		sim := similarity.Similarity(b.Merchant, e.Vendor)
		acc.add(w.Merchant, sim, sim > vendorThreshold,
			fmt.Sprintf("Airline match: %s ~ %s (%s)", b.Merchant, e.Vendor, pct(sim)))
	}

	if bc, ec := records.NormalizeCurrency(b.Currency), records.NormalizeCurrency(e.Currency); bc != "" && ec != "" {
		acc.add(w.Currency, 1, bc == ec, "Currency match: "+bc)
	}

	if m := similarity.DateScore(flightBookingDates(b), expenseDates(e)); m.Comparable {
		acc.add(w.Date, m.Score, m.Score > 0, dateReason(m))
	}

	factor := 1.0
	if !IsFlightCandidate(b, e) {
		factor = AmbiguousFlightPenalty
		acc.note(fmt.Sprintf("Ambiguous flight classification (x%.1f)", AmbiguousFlightPenalty))
	}
	return acc.score(factor)
}

// referenceScore checks the booking reference against the description:
// substring match or identical flight numbers score 1, a close token scores
// its similarity, anything else 0.
func referenceScore(ref, description string) (float64, string) {
	if similarity.ReferenceInText(ref, description) {
		return 1, "Booking reference found in description: " + ref
	}
	if rn, ok := similarity.ExtractFlightNumber(ref); ok {
		if dn, ok := similarity.ExtractFlightNumber(description); ok && rn == dn {
			return 1, "Flight number match: " + rn
		}
	}
	if sim := similarity.BestTokenSimilarity(ref, description); sim >= partialReferenceCutoff {
		return sim, fmt.Sprintf("Partial reference match: %s (%s)", ref, pct(sim))
	}
	return 0, ""
}

func routeReason(b records.BookingRecord, m similarity.RouteMatch) string {
	switch {
	case m.OriginMatched && m.DestinationMatched:
		return fmt.Sprintf("Route match: %s -> %s", b.Origin, b.Destination)
	case m.OriginMatched:
		return "Route match: origin " + b.Origin
	default:
		return "Route match: destination " + b.Destination
	}
}

// StrictFlight is the flight strategy behind a hard card gate: unless both
// records carry the same known card digits, the pair scores exactly 0.
type StrictFlight struct {
	flight *Flight
}

// NewStrictFlight creates a strict flight strategy with default weights
func NewStrictFlight() *StrictFlight {
	return &StrictFlight{flight: NewFlight()}
}

// Name implements Strategy
func (s *StrictFlight) Name() string { return NameFlightStrict }

// Score implements Strategy
func (s *StrictFlight) Score(b records.BookingRecord, e records.ExpenseRecord) Score {
	bc, ec := records.NormalizeCardLast4(b.CardLast4), records.NormalizeCardLast4(e.CardLast4)
	switch {
	case bc == "" || ec == "":
		return Score{Value: 0, Reasons: []string{"Card last 4 unavailable"}}
	case bc != ec:
		return Score{Value: 0, Reasons: []string{fmt.Sprintf("Card mismatch: %s vs %s", bc, ec)}}
	}
	return s.flight.Score(b, e)
}
