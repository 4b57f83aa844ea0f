package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/logging"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/storage"
)

// RunReconcile loads the input files, runs one reconciliation and prints the
// report to stdout. Logs go to stderr.
func RunReconcile(ctx context.Context, cfg *config.Config, flags ReconcileFlags, stdout, stderr io.Writer) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerTo(stderr, loggingCfg).With(logging.ComponentKey, "reconcile")

	bookings, err := LoadBookings(flags.BookingsPath)
	if err != nil {
		return err
	}
	expenses, err := LoadExpenses(flags.ExpensesPath)
	if err != nil {
		return err
	}

	var repo storage.Repository
	if flags.Record {
		store, err := storage.NewStorageWithLogger(cfg.Storage.DatabasePath, logger)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer func() { _ = store.Close() }()
		repo = store
	}

	svc, err := reconcile.NewService(cfg, repo, logger)
	if err != nil {
		return err
	}

	category, err := flags.ParsedCategory()
	if err != nil {
		return err
	}

	req := reconcile.Request{
		Bookings:      bookings,
		Expenses:      expenses,
		Strategy:      flags.Strategy,
		MinConfidence: flags.MinConfidence,
		BatchSize:     flags.BatchSize,
		Record:        flags.Record,
	}
	if !flags.JSON {
		PrintHeader(stdout, len(bookings), len(expenses))
		PrintConfiguration(stdout, flags.Strategy, category, flags.Record)
		if flags.Verbose {
			req.OnProgress = ProgressPrinter(stdout)
		}
	}

	var report *reconcile.Report
	if category == "" {
		report, err = svc.Reconcile(ctx, req)
	} else {
		report, err = svc.ReconcileCategory(ctx, category, req)
	}
	if err != nil {
		logger.Error("Reconciliation failed", slog.Any("error", err))
		return err
	}

	if flags.JSON {
		return PrintJSON(stdout, report)
	}
	PrintReport(stdout, report)
	return nil
}
