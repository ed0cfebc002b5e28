package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/autosync"
	"github.com/mikey/applytrack/internal/di"
	"github.com/mikey/applytrack/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	frontend ports.Frontend,
	poller *autosync.Poller,
	store ports.SettingsStore,
) error {
	defer logger.Sync()
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close settings store", zap.Error(err))
		}
	}()

	// Start the frontend
	if err := frontend.Start(); err != nil {
		logger.Error("Failed to start frontend", zap.Error(err))
		return err
	}

	if err := poller.Start(); err != nil {
		logger.Warn("Autosync disabled", zap.Error(err))
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := poller.Stop(); err != nil {
		logger.Error("Failed to stop autosync", zap.Error(err))
	}

	// Stop the frontend
	if err := frontend.Stop(); err != nil {
		logger.Error("Failed to stop frontend", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
