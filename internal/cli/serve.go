package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/travel-reconcile/internal/api"
	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/logging"
	"github.com/eshaffer321/travel-reconcile/internal/infrastructure/storage"
)

// jobRetention is how long finished background jobs stay queryable
const jobRetention = time.Hour

// RunServe runs the API server.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithComponent(loggingCfg, "api")

	// Initialize storage
	store, err := storage.NewStorageWithLogger(cfg.Storage.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc, err := reconcile.NewService(cfg, store, logger)
	if err != nil {
		return err
	}

	apiCfg := api.ConfigFrom(cfg.API)
	if flags.Port != 0 {
		apiCfg.Port = flags.Port
	}

	// Create and start server
	server := api.NewServer(apiCfg, svc, logger)

	// Periodically drop finished jobs
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := svc.CleanupJobs(jobRetention); n > 0 {
					logger.Debug("removed finished jobs", "count", n)
				}
			case <-stopCleanup:
				return
			}
		}
	}()
	defer close(stopCleanup)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
