// Command reconcile matches a file of travel bookings against a file of
// expense line items and prints the proposed pairs.
//
// Usage:
//
//	reconcile -bookings bookings.json -expenses expenses.json [-strategy auto] [-category flight] [-record]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/travel-reconcile/internal/cli"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/config"
)

func main() {
	flags, err := cli.ParseReconcileFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RunReconcile(ctx, cfg, flags, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
