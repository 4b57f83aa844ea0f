// Package records defines the normalized booking and expense records the
// reconciliation engine works on, plus the match types it produces.
//
// Records are produced by an ingestion stage that lives outside this module
// and are treated as immutable values: nothing in the engine mutates them.
package records

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the travel category of a booking
type Category string

const (
	CategoryFlight Category = "Flight"
	CategoryHotel  Category = "Hotel"
	CategoryCar    Category = "Car"
	CategoryRail   Category = "Rail"
	CategoryOther  Category = "Other"
)

// ParseCategory maps loosely formatted category labels to a Category.
// Unknown labels map to CategoryOther.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flight", "flights", "air", "airfare", "airline":
		return CategoryFlight
	case "hotel", "hotels", "lodging", "accommodation":
		return CategoryHotel
	case "car", "cars", "car rental", "rental car", "rental":
		return CategoryCar
	case "rail", "train", "trains":
		return CategoryRail
	default:
		return CategoryOther
	}
}

// BookingRecord is one reservation from a travel-management system
type BookingRecord struct {
	ID                      string              `json:"id"`
	TravelerName            string              `json:"traveler_name,omitempty"`
	Merchant                string              `json:"merchant,omitempty"`
	Origin                  string              `json:"origin,omitempty"`
	Destination             string              `json:"destination,omitempty"`
	CardLast4               string              `json:"card_last4,omitempty"`
	CardHolderName          string              `json:"card_holder_name,omitempty"`
	CardType                string              `json:"card_type,omitempty"`
	Currency                string              `json:"currency,omitempty"`
	Amount                  decimal.NullDecimal `json:"amount"`
	ExpectedTransactionTime Date                `json:"expected_transaction_time"`
	BookingDate             Date                `json:"booking_date"`
	DepartureDate           Date                `json:"departure_date"`
	ReturnDate              Date                `json:"return_date"`
	BookingReference        string              `json:"booking_reference,omitempty"`
	TravelType              string              `json:"travel_type,omitempty"`
	Category                Category            `json:"category,omitempty"`
}

// ExpenseRecord is one corporate-card or expense-report line item
type ExpenseRecord struct {
	ID           string              `json:"id"`
	EmployeeName string              `json:"employee_name,omitempty"`
	Vendor       string              `json:"vendor,omitempty"`
	Description  string              `json:"description,omitempty"`
	Amount       decimal.NullDecimal `json:"amount"`
	Currency     string              `json:"currency,omitempty"`
	CardLast4    string              `json:"card_last4,omitempty"`
	ExpenseDate  Date                `json:"expense_date"`
	StartDate    Date                `json:"start_date"`
	EndDate      Date                `json:"end_date"`
	Origin       string              `json:"origin,omitempty"`
	Destination  string              `json:"destination,omitempty"`
}

// MatchCandidate is the transient result of scoring one booking against one expense
type MatchCandidate struct {
	BookingID string
	ExpenseID string
	Score     float64
	Reasons   []string
}

// MatchResult is an accepted candidate
type MatchResult struct {
	ExpenseID  string   `json:"expense_id"`
	BookingID  string   `json:"booking_id"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// Amount wraps a float amount as a present decimal value.
func Amount(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

// NormalizeCardLast4 returns the last four card digits, or "" when the value
// is missing or a known placeholder. Placeholders never count as a match.
// Travel exports write "0000" for an unknown card, so a real card ending in
// 0000 carries no card signal.
func NormalizeCardLast4(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 4 {
		return ""
	}
	d = d[len(d)-4:]
	if d == "0000" {
		return ""
	}
	return d
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
