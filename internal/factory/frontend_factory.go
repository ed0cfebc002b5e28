package factory

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/adapters/cli"
	"github.com/mikey/applytrack/internal/adapters/dashboard"
	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/ports"
	"github.com/mikey/applytrack/internal/tracker"
)

// FrontendFactory creates the frontend selected by server.frontend
type FrontendFactory struct {
	cfg      *config.Config
	runner   *tracker.Runner
	settings core.SettingsRepository
	logger   *zap.Logger
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(cfg *config.Config, runner *tracker.Runner, settings core.SettingsRepository, logger *zap.Logger) *FrontendFactory {
	return &FrontendFactory{
		cfg:      cfg,
		runner:   runner,
		settings: settings,
		logger:   logger,
	}
}

// CreateFrontend creates the configured frontend. out is only used by the CLI frontend.
func (f *FrontendFactory) CreateFrontend(out io.Writer) (ports.Frontend, error) {
	serverCfg := f.cfg.GetServer()
	token := f.cfg.GetGmail().AccessToken

	switch serverCfg.Frontend {
	case "dashboard":
		return dashboard.NewDashboard(
			f.runner,
			f.settings,
			token,
			serverCfg.ListenAddress,
			f.logger.Named("dashboard"),
		), nil
	case "cli":
		return cli.NewCliFrontend(
			f.runner,
			token,
			out,
			f.logger.Named("cli"),
			f.cfg.GetBool("cli.verbose"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", serverCfg.Frontend)
	}
}
