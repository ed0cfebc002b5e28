package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/adapters/cli"
	"github.com/mikey/applytrack/internal/di"
	"github.com/mikey/applytrack/internal/ports"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags, os.Stdout)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	err = container.Invoke(func(logger *zap.Logger, frontend ports.Frontend, store ports.SettingsStore) error {
		defer logger.Sync()
		defer store.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if flags.HasSettingsAction() {
			return di.ApplySettingsFlags(ctx, flags, store, os.Stdout)
		}

		if f, ok := frontend.(*cli.CliFrontend); ok {
			return f.Run(ctx)
		}
		return frontend.Start()
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "applytrack: %v\n", err)
		os.Exit(1)
	}
}
