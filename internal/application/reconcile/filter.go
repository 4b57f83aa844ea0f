package reconcile

import (
	"github.com/eshaffer321/travel-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/similarity"
)

// BookingsInCategory keeps the bookings in category, preserving order
func BookingsInCategory(bookings []records.BookingRecord, category records.Category) []records.BookingRecord {
	out := make([]records.BookingRecord, 0, len(bookings))
	for _, b := range bookings {
		if matcher.BookingCategory(b) == category {
			out = append(out, b)
		}
	}
	return out
}

// FlightExpenses keeps the expenses that look like air travel: an airline
// vendor, a carrier code or an airport pair in the description.
func FlightExpenses(expenses []records.ExpenseRecord) []records.ExpenseRecord {
	out := make([]records.ExpenseRecord, 0, len(expenses))
	for _, e := range expenses {
		if isFlightExpense(e) {
			out = append(out, e)
		}
	}
	return out
}

func isFlightExpense(e records.ExpenseRecord) bool {
	if similarity.LooksLikeAirline(e.Vendor) {
		return true
	}
	if _, ok := similarity.ExtractCarrierCode(e.Description); ok {
		return true
	}
	_, _, ok := similarity.ExtractRoute(e.Description)
	return ok
}

// scopeToCategory narrows req the way BookingsInCategory and FlightExpenses
// do. Records without an ID are given their key from the caller's input
// position before anything is dropped; those keys are returned in order.
func scopeToCategory(req Request, category records.Category) (Request, []string) {
	var positional []string

	bookings := make([]records.BookingRecord, 0, len(req.Bookings))
	for i, b := range req.Bookings {
		if matcher.BookingCategory(b) != category {
			continue
		}
		if key, fallback := matcher.BookingKey(b.ID, i); fallback {
			b.ID = key
			positional = append(positional, key)
		}
		bookings = append(bookings, b)
	}
	req.Bookings = bookings

	if category != records.CategoryFlight {
		return req, positional
	}

	expenses := make([]records.ExpenseRecord, 0, len(req.Expenses))
	for i, e := range req.Expenses {
		if !isFlightExpense(e) {
			continue
		}
		if key, fallback := matcher.ExpenseKey(e.ID, i); fallback {
			e.ID = key
			positional = append(positional, key)
		}
		expenses = append(expenses, e)
	}
	req.Expenses = expenses
	return req, positional
}

// clearPositionalIDs blanks the IDs scopeToCategory filled in, so unmatched
// records go back to callers as they came in
func clearPositionalIDs(bookings []records.BookingRecord, expenses []records.ExpenseRecord, positional []string) {
	if len(positional) == 0 {
		return
	}
	assigned := make(map[string]bool, len(positional))
	for _, key := range positional {
		assigned[key] = true
	}
	for i := range bookings {
		if assigned[bookings[i].ID] {
			bookings[i].ID = ""
		}
	}
	for i := range expenses {
		if assigned[expenses[i].ID] {
			expenses[i].ID = ""
		}
	}
}
