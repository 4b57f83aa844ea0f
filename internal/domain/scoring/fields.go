package scoring

import (
	"strings"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/similarity"
)

// present reports whether a text field carries anything comparable
func present(s string) bool {
	return similarity.Normalize(s) != ""
}

func bookingDates(b records.BookingRecord) []records.Date {
	return []records.Date{b.BookingDate, b.DepartureDate, b.ReturnDate, b.ExpectedTransactionTime}
}

// flightBookingDates prefers the expected transaction time, falling back to
// the departure date and then the booking date.
func flightBookingDates(b records.BookingRecord) []records.Date {
	for _, d := range []records.Date{b.ExpectedTransactionTime, b.DepartureDate, b.BookingDate} {
		if d.Valid() {
			return []records.Date{d}
		}
	}
	return nil
}

func expenseDates(e records.ExpenseRecord) []records.Date {
	return []records.Date{e.ExpenseDate, e.StartDate, e.EndDate}
}

// expenseRoute returns the expense's origin and destination, falling back to
// an airport pair embedded in the description.
func expenseRoute(e records.ExpenseRecord) (string, string) {
	if present(e.Origin) || present(e.Destination) {
		return e.Origin, e.Destination
	}
	if o, d, ok := similarity.ExtractRoute(e.Description); ok {
		return o, d
	}
	return "", ""
}

// bookingCarrier finds the carrier from the booking reference, then the merchant
func bookingCarrier(b records.BookingRecord) (string, bool) {
	if code, ok := similarity.ExtractCarrierCode(b.BookingReference); ok {
		return code, true
	}
	return similarity.CarrierForAirline(b.Merchant)
}

// expenseCarrier finds the carrier from the description, then the vendor
func expenseCarrier(e records.ExpenseRecord) (string, bool) {
	if code, ok := similarity.ExtractCarrierCode(e.Description); ok {
		return code, true
	}
	return similarity.CarrierForAirline(e.Vendor)
}

// IsFlightCandidate classifies a pair as flight-related: the booking is in
// the Flight category, its travel type mentions flight or air, the merchant
// or vendor is an airline, or the booking has both an origin and a
// destination.
func IsFlightCandidate(b records.BookingRecord, e records.ExpenseRecord) bool {
	if b.Category == records.CategoryFlight {
		return true
	}
	for _, tok := range strings.Fields(similarity.Normalize(b.TravelType)) {
		if strings.HasPrefix(tok, "flight") || strings.HasPrefix(tok, "air") {
			return true
		}
	}
	if similarity.LooksLikeAirline(b.Merchant) || similarity.LooksLikeAirline(e.Vendor) {
		return true
	}
	return present(b.Origin) && present(b.Destination)
}
