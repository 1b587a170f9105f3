// Package cli consolidates the initialization shared by the command
// entrypoints: logging, .env loading, config validation, local store
// setup and graceful shutdown.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/techcolloid1243/finance-planner/internal/config"
	applog "github.com/techcolloid1243/finance-planner/internal/log"
	"github.com/techcolloid1243/finance-planner/internal/storage"
)

// SetupLogger initializes structured logging and sets the default
// logger.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored; the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting
// the process on failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitLocalStore opens the local SQLite store, exiting the process on
// failure.
func InitLocalStore(logger *applog.Logger, dbPath string) *storage.LocalStore {
	local, err := storage.NewLocalStore(dbPath)
	if err != nil {
		logger.Error("Failed to initialize local store", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return local
}

// GracefulShutdown returns a context cancelled on SIGINT/SIGTERM. The
// cleanup func runs, bounded by timeout, before the done channel closes.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()
		close(done)
	}()

	return ctx, done
}
