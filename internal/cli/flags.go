package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eshaffer321/travel-reconcile/internal/domain/records"
	"github.com/eshaffer321/travel-reconcile/internal/domain/scoring"
)

// ReconcileFlags are the flags of the reconcile command
type ReconcileFlags struct {
	ConfigPath    string
	BookingsPath  string
	ExpensesPath  string
	Strategy      string
	MinConfidence *float64 // nil keeps the configured threshold
	BatchSize     int
	Category      string
	Record        bool
	JSON          bool
	Verbose       bool
}

// ParseReconcileFlags parses reconcile flags from args (without the program name)
func ParseReconcileFlags(args []string, output io.Writer) (ReconcileFlags, error) {
	var flags ReconcileFlags
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	fs.StringVar(&flags.BookingsPath, "bookings", "", "JSON file with an array of booking records (required)")
	fs.StringVar(&flags.ExpensesPath, "expenses", "", "JSON file with an array of expense records (required)")
	fs.StringVar(&flags.Strategy, "strategy", "", fmt.Sprintf("Scoring strategy %v (default from config)", scoring.Names()))
	fs.Func("min-confidence", "Minimum confidence to accept a match, 0-1 (default from config)", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		flags.MinConfidence = &v
		return nil
	})
	fs.IntVar(&flags.BatchSize, "batch-size", 0, "Expenses per chunk (0 = from config)")
	fs.StringVar(&flags.Category, "category", "", "Reconcile a single category: flight, hotel, car, rail, other")
	fs.BoolVar(&flags.Record, "record", false, "Store the run in the history database")
	fs.BoolVar(&flags.JSON, "json", false, "Print the full report as JSON")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return ReconcileFlags{}, err
	}
	if flags.BookingsPath == "" || flags.ExpensesPath == "" {
		return ReconcileFlags{}, fmt.Errorf("both -bookings and -expenses are required")
	}
	if _, err := flags.ParsedCategory(); err != nil {
		return ReconcileFlags{}, err
	}
	return flags, nil
}

// ParsedCategory returns the selected category, or "" for the whole dataset
func (f ReconcileFlags) ParsedCategory() (records.Category, error) {
	if f.Category == "" {
		return "", nil
	}
	c := records.ParseCategory(f.Category)
	if c == records.CategoryOther && !strings.EqualFold(strings.TrimSpace(f.Category), "other") {
		return "", fmt.Errorf("unknown category: %s", f.Category)
	}
	return c, nil
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	ConfigPath string
	Port       int
	Verbose    bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags(args []string, output io.Writer) (*ServeFlags, error) {
	flags := &ServeFlags{}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	fs.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = from config)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}
