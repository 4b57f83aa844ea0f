// Command api serves the reconciliation engine over HTTP.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/eshaffer321/travel-reconcile/internal/cli"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/config"
)

func main() {
	flags, err := cli.ParseServeFlags(os.Args[1:], os.Stderr)
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

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
