package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/travel-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, bookings, expenses int) {
	fmt.Fprintf(w, "travel-reconcile: %d bookings, %d expenses\n", bookings, expenses)
}

// PrintConfiguration prints the effective run settings
func PrintConfiguration(w io.Writer, strategy string, category records.Category, record bool) {
	if strategy == "" {
		strategy = "(configured)"
	}
	fmt.Fprintf(w, "Strategy: %s", strategy)
	if category != "" {
		fmt.Fprintf(w, " | Category: %s", category)
	}
	if record {
		fmt.Fprintf(w, " | Recording run")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
}

// ProgressPrinter returns a progress callback that writes one line per update
func ProgressPrinter(w io.Writer) matcher.ProgressFunc {
	return func(p matcher.Progress) {
		if p.IsComplete {
			fmt.Fprintf(w, "Done: %d/%d expenses, %d matches\n", p.ProcessedExpenses, p.TotalExpenses, p.Matches)
			return
		}
		fmt.Fprintf(w, "Processed %d/%d expenses (%d matches)\n", p.ProcessedExpenses, p.TotalExpenses, p.Matches)
	}
}

// PrintReport prints the matches table and the run summary
func PrintReport(w io.Writer, report *reconcile.Report) {
	fmt.Fprintln(w, strings.Repeat("-", 60))

	if len(report.Matches) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "EXPENSE\tBOOKING\tCONFIDENCE\tREASONS")
		for _, m := range report.Matches {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", m.ExpenseID, m.BookingID, m.Confidence, strings.Join(m.Reasons, "; "))
		}
		_ = tw.Flush()
		fmt.Fprintln(w)
	}

	s := report.Stats
	fmt.Fprintf(w, "Summary: Matches=%d (high=%d medium=%d low=%d) Avg=%.2f\n",
		s.Total, s.High, s.Medium, s.Low, s.AverageConfidence)
	fmt.Fprintf(w, "Unmatched: Bookings=%d Expenses=%d\n",
		len(report.UnmatchedBookings), len(report.UnmatchedExpenses))

	if len(report.ByCategory) > 0 {
		categories := make([]string, 0, len(report.ByCategory))
		for c := range report.ByCategory {
			categories = append(categories, string(c))
		}
		sort.Strings(categories)
		parts := make([]string, len(categories))
		for i, c := range categories {
			parts[i] = fmt.Sprintf("%s=%d", c, report.ByCategory[records.Category(c)])
		}
		fmt.Fprintf(w, "By category: %s\n", strings.Join(parts, " "))
	}

	if len(report.FallbackIDs) > 0 {
		fmt.Fprintf(w, "\nWarning: %d records had no ID and were keyed by position\n", len(report.FallbackIDs))
	}
	if report.RunID != "" {
		fmt.Fprintf(w, "\nRun recorded: %s\n", report.RunID)
	}
}

// PrintJSON writes the report as indented JSON
func PrintJSON(w io.Writer, report *reconcile.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
