package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/travel-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

func TestPrintReport(t *testing.T) {
	report := &reconcile.Report{
		RunID: "run-1",
		Matches: []records.MatchResult{
			{ExpenseID: "E1", BookingID: "B1", Confidence: 0.99, Reasons: []string{"Card last 4 match: 1234", "Carrier code match: DL"}},
		},
		UnmatchedBookings: []records.BookingRecord{{ID: "B2"}},
		UnmatchedExpenses: []records.ExpenseRecord{},
		Stats:             matcher.Summarize([]records.MatchResult{{Confidence: 0.99}}),
		ByCategory:        map[records.Category]int{records.CategoryHotel: 2, records.CategoryFlight: 1},
		FallbackIDs:       []string{"booking at index 3"},
	}
	var buf bytes.Buffer

	PrintReport(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "Card last 4 match: 1234; Carrier code match: DL")
	assert.Contains(t, out, "0.99")
	assert.Contains(t, out, "Summary: Matches=1 (high=1 medium=0 low=0) Avg=0.99")
	assert.Contains(t, out, "Unmatched: Bookings=1 Expenses=0")
	assert.Contains(t, out, "By category: Flight=1 Hotel=2")
	assert.Contains(t, out, "1 records had no ID")
	assert.Contains(t, out, "Run recorded: run-1")
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	progress := ProgressPrinter(&buf)

	progress(matcher.Progress{TotalExpenses: 100, ProcessedExpenses: 50, Matches: 12})
	progress(matcher.Progress{TotalExpenses: 100, ProcessedExpenses: 100, Matches: 20, IsComplete: true})

	assert.Equal(t, "Processed 50/100 expenses (12 matches)\nDone: 100/100 expenses, 20 matches\n", buf.String())
}

func TestPrintConfiguration(t *testing.T) {
	var buf bytes.Buffer

	PrintConfiguration(&buf, "", records.CategoryRail, true)

	assert.Equal(t, "Strategy: (configured) | Category: Rail | Recording run\n\n", buf.String())
}
