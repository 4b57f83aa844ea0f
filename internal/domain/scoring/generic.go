package scoring

import (
	"fmt"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/similarity"
)

// GenericWeights holds the criterion weights of the generic strategy
type GenericWeights struct {
	Card        float64
	Name        float64
	Amount      float64
	Reference   float64
	Vendor      float64
	Date        float64
	Origin      float64
	Destination float64
}

// DefaultGenericWeights returns the canonical generic weighting
func DefaultGenericWeights() GenericWeights {
	return GenericWeights{
		Card:        20,
		Name:        15,
		Amount:      15,
		Reference:   20,
		Vendor:      10,
		Date:        10,
		Origin:      5,
		Destination: 5,
	}
}

// Thresholds a subscore must exceed to count
const (
	nameThreshold   = 0.7
	amountThreshold = 0.8
	vendorThreshold = 0.6
	legThreshold    = similarity.LegMatchThreshold
)

// Generic scores any booking category with balanced weights
type Generic struct {
	weights GenericWeights
}

// NewGeneric creates a generic strategy with default weights
func NewGeneric() *Generic {
	return NewGenericWithWeights(DefaultGenericWeights())
}

// NewGenericWithWeights creates a generic strategy with custom weights
func NewGenericWithWeights(w GenericWeights) *Generic {
	return &Generic{weights: w}
}

// Name implements Strategy
func (s *Generic) Name() string { return NameGeneric }

// Score implements Strategy
func (s *Generic) Score(b records.BookingRecord, e records.ExpenseRecord) Score {
	w := s.weights
	var acc accumulator

	// Card last 4
	if bc, ec := records.NormalizeCardLast4(b.CardLast4), records.NormalizeCardLast4(e.CardLast4); bc != "" && ec != "" {
		acc.add(w.Card, 1, bc == ec, "Card last 4 match: "+bc)
	}

	// Traveler vs employee name
	if present(b.TravelerName) && present(e.EmployeeName) {
		sim := similarity.Similarity(b.TravelerName, e.EmployeeName)
		acc.add(w.Name, sim, sim > nameThreshold,
			fmt.Sprintf("Traveler name match: %s ~ %s (%s)", b.TravelerName, e.EmployeeName, pct(sim)))
	}

	// Amount
	if m := similarity.AmountScore(b.Amount, e.Amount); m.Comparable {
		acc.add(w.Amount, m.Score, m.Score > amountThreshold,
			fmt.Sprintf("Amount match: %s vs %s (%s)", b.Amount.Decimal.StringFixed(2), e.Amount.Decimal.StringFixed(2), pct(m.Score)))
	}

	// Booking reference in description
	if present(b.BookingReference) && present(e.Description) {
		acc.add(w.Reference, 1, similarity.ReferenceInText(b.BookingReference, e.Description),
			"Booking reference found in description: "+b.BookingReference)
	}

	// Merchant vs vendor
	if present(b.Merchant) && present(e.Vendor) {
		sim := similarity.Similarity(b.Merchant, e.Vendor)
		acc.add(w.Vendor, sim, sim > vendorThreshold,
			fmt.Sprintf("Vendor match: %s ~ %s (%s)", b.Merchant, e.Vendor, pct(sim)))
	}

	// Dates
	if m := similarity.DateScore(bookingDates(b), expenseDates(e)); m.Comparable {
		acc.add(w.Date, m.Score, m.Score > 0, dateReason(m))
	}

	// Origin and destination legs
	eo, ed := expenseRoute(e)
	if present(b.Origin) && present(eo) {
		sim := similarity.Similarity(b.Origin, eo)
		acc.add(w.Origin, sim, sim > legThreshold, "Origin match: "+b.Origin)
	}
	if present(b.Destination) && present(ed) {
		sim := similarity.Similarity(b.Destination, ed)
		acc.add(w.Destination, sim, sim > legThreshold, "Destination match: "+b.Destination)
	}

	return acc.score(1)
}

func dateReason(m similarity.DateMatch) string {
	if m.DaysApart == 0 {
		return "Date match: same day"
	}
	if m.DaysApart == 1 {
		return "Date proximity: 1 day apart"
	}
	return fmt.Sprintf("Date proximity: %d days apart", m.DaysApart)
}
