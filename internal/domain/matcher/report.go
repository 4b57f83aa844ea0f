package matcher

import (
	"math"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/scoring"
)

// Confidence bucket boundaries used by Summarize
const (
	HighConfidence   = 0.8
	MediumConfidence = 0.5
)

// UnmatchedBookings returns the bookings that take part in no match, in
// input order. Bookings without an ID are identified by position, the same
// way the matcher keys them.
func UnmatchedBookings(bookings []records.BookingRecord, matches []records.MatchResult) []records.BookingRecord {
	matched := make(map[string]bool, len(matches))
	for _, m := range matches {
		matched[m.BookingID] = true
	}

	out := []records.BookingRecord{}
	for i, b := range bookings {
		if key, _ := BookingKey(b.ID, i); !matched[key] {
			out = append(out, b)
		}
	}
	return out
}

// UnmatchedExpenses returns the expenses that take part in no match, in input order
func UnmatchedExpenses(expenses []records.ExpenseRecord, matches []records.MatchResult) []records.ExpenseRecord {
	matched := make(map[string]bool, len(matches))
	for _, m := range matches {
		matched[m.ExpenseID] = true
	}

	out := []records.ExpenseRecord{}
	for i, e := range expenses {
		if key, _ := ExpenseKey(e.ID, i); !matched[key] {
			out = append(out, e)
		}
	}
	return out
}

// Stats summarizes the confidence distribution of a match set
type Stats struct {
	Total             int     `json:"total"`
	High              int     `json:"high"`   // >= 0.8
	Medium            int     `json:"medium"` // [0.5, 0.8)
	Low               int     `json:"low"`    // < 0.5
	AverageConfidence float64 `json:"average_confidence"`
}

// Summarize buckets matches by confidence
func Summarize(matches []records.MatchResult) Stats {
	var stats Stats
	var sum float64
	for _, m := range matches {
		stats.Total++
		sum += m.Confidence
		switch {
		case m.Confidence >= HighConfidence:
			stats.High++
		case m.Confidence >= MediumConfidence:
			stats.Medium++
		default:
			stats.Low++
		}
	}
	if stats.Total > 0 {
		stats.AverageConfidence = math.Round(sum/float64(stats.Total)*100) / 100
	}
	return stats
}

// BookingCategory returns the category a booking is counted and narrowed
// under. An explicit Category wins. An unset one is inferred: flight-like
// bookings are Flight, otherwise TravelType is parsed.
func BookingCategory(b records.BookingRecord) records.Category {
	if b.Category != "" {
		return b.Category
	}
	if scoring.IsFlightCandidate(b, records.ExpenseRecord{}) {
		return records.CategoryFlight
	}
	return records.ParseCategory(b.TravelType)
}

// CountByCategory counts matches per BookingCategory of the matched booking
func CountByCategory(bookings []records.BookingRecord, matches []records.MatchResult) map[records.Category]int {
	byBooking := make(map[string]records.BookingRecord, len(bookings))
	for i, b := range bookings {
		key, _ := BookingKey(b.ID, i)
		if _, ok := byBooking[key]; !ok {
			byBooking[key] = b
		}
	}

	counts := make(map[records.Category]int)
	for _, m := range matches {
		b, ok := byBooking[m.BookingID]
		if !ok {
			continue
		}
		counts[BookingCategory(b)]++
	}
	return counts
}
