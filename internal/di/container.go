package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/autosync"
	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/factory"
	"github.com/mikey/applytrack/internal/logging"
	"github.com/mikey/applytrack/internal/ports"
	"github.com/mikey/applytrack/internal/tracker"
	"github.com/mikey/applytrack/internal/utils"
)

// BuildContainer creates and configures a dependency injection container for the dashboard server
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register presenter; the server has no terminal table
	if err := container.Provide(func(f *factory.PresenterFactory) ports.Presenter {
		return f.CreatePresenter(nil)
	}); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend(nil)
	}); err != nil {
		return nil, err
	}

	// Register autosync poller
	if err := container.Provide(NewPoller); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCommon registers everything shared by the server and the CLI.
// Callers provide *config.Config, *zap.Logger, ports.Presenter and ports.Frontend.
func provideCommon(container *dig.Container) error {
	// Register factories
	for _, constructor := range []interface{}{
		factory.NewLLMFactory,
		factory.NewSettingsFactory,
		factory.NewTextProcessorFactory,
		factory.NewPresenterFactory,
		factory.NewFrontendFactory,
		factory.NewSessionFactory,
	} {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Register settings store
	if err := container.Provide(func(f *factory.SettingsFactory) (ports.SettingsStore, error) {
		return f.CreateSettingsStore()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(store ports.SettingsStore) core.SettingsRepository {
		return store
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register tracker service
	if err := container.Provide(factory.NewIgnoreList); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTrackerService); err != nil {
		return err
	}

	// Register runner
	if err := container.Provide(func(f *factory.SessionFactory) tracker.SessionBuilder {
		return f
	}); err != nil {
		return err
	}
	if err := container.Provide(tracker.NewRunner); err != nil {
		return err
	}

	return nil
}

// NewPoller creates the autosync poller from the autosync section
func NewPoller(cfg *config.Config, runner *tracker.Runner, settings core.SettingsRepository, logger *zap.Logger) (*autosync.Poller, error) {
	autoSyncCfg, err := cfg.GetAutoSync()
	if err != nil {
		return nil, err
	}

	return autosync.NewPoller(
		runner.Run,
		settings,
		cfg.GetGmail().AccessToken,
		autoSyncCfg.Interval,
		logger.Named("autosync"),
	), nil
}
