package factory

import (
	"io"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/adapters/presenter"
	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/ports"
)

// PresenterFactory assembles the presenters a run result is handed to
type PresenterFactory struct {
	cfg      *config.Config
	settings core.SettingsRepository
	logger   *zap.Logger
}

// NewPresenterFactory creates a new presenter factory
func NewPresenterFactory(cfg *config.Config, settings core.SettingsRepository, logger *zap.Logger) *PresenterFactory {
	return &PresenterFactory{
		cfg:      cfg,
		settings: settings,
		logger:   logger,
	}
}

// CreatePresenter returns a chain of the table (when out is set), CSV export (when configured)
// and the SMTP notifier (when recipients are configured)
func (f *PresenterFactory) CreatePresenter(out io.Writer) ports.Presenter {
	var chain presenter.Chain

	if out != nil {
		chain = append(chain, presenter.NewTablePresenter(out))
	}

	if path := f.cfg.GetExport().CSVPath; path != "" {
		chain = append(chain, presenter.NewCSVPresenter(path, f.logger))
	}

	notify := f.cfg.GetNotify()
	if len(notify.To) > 0 {
		chain = append(chain, presenter.NewSMTPNotifier(
			f.settings,
			notify.SMTPAddress,
			notify.Helo,
			notify.From,
			notify.To,
			notify.Username,
			notify.Password,
			f.logger.Named("notify"),
		))
	}

	return chain
}
