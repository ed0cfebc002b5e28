package factory

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/adapters/gmail"
	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
)

// SessionFactory builds the per-run session. The extraction path is chosen here, once per run.
type SessionFactory struct {
	cfg      *config.Config
	settings core.SettingsRepository
	llm      *LLMFactory
	logger   *zap.Logger
	location *time.Location
}

// NewSessionFactory creates a new session factory
func NewSessionFactory(cfg *config.Config, settings core.SettingsRepository, llm *LLMFactory, logger *zap.Logger) (*SessionFactory, error) {
	trackerCfg, err := cfg.GetTracker()
	if err != nil {
		return nil, err
	}

	return &SessionFactory{
		cfg:      cfg,
		settings: settings,
		llm:      llm,
		logger:   logger,
		location: trackerCfg.Location,
	}, nil
}

// NewSession creates a Gmail-backed session for accessToken. The returned cleanup must be called after the run.
func (f *SessionFactory) NewSession(ctx context.Context, accessToken string, onProgress func(core.Progress)) (*core.Session, func(), error) {
	mail, err := gmail.NewClient(ctx, accessToken, f.cfg.GetGmail().Endpoint, f.logger.Named("gmail"))
	if err != nil {
		return nil, nil, err
	}

	extractor, cleanup, err := f.createExtractor(ctx)
	if err != nil {
		return nil, nil, err
	}

	return &core.Session{
		Mail:       mail,
		Extractor:  extractor,
		OnProgress: onProgress,
	}, cleanup, nil
}

// createExtractor picks the delegate when a key is available (or the provider needs none), else the rules
func (f *SessionFactory) createExtractor(ctx context.Context) (core.Extractor, func(), error) {
	noop := func() {}
	rules := core.NewRuleExtractor(f.location)

	if f.llm.Provider() == ProviderNone {
		return rules, noop, nil
	}

	var apiKey string
	if f.llm.NeedsAPIKey() {
		prefs, err := core.LoadSettings(ctx, f.settings)
		if err != nil {
			return nil, nil, err
		}
		apiKey = prefs.APIKey
		if apiKey == "" {
			apiKey = f.llm.ConfiguredAPIKey()
		}
		if apiKey == "" {
			f.logger.Info("No API key stored, using rule-based extraction")
			return rules, noop, nil
		}
	}

	client, err := f.llm.CreateLLMClient(apiKey)
	if errors.Is(err, ErrNoDelegate) {
		return rules, noop, nil
	}
	if err != nil {
		return nil, nil, err
	}

	f.logger.Info("Using delegate extraction", zap.String("provider", f.llm.Provider()))

	cleanup := noop
	if closer, ok := client.(io.Closer); ok {
		cleanup = func() {
			if err := closer.Close(); err != nil {
				f.logger.Warn("Failed to close LLM client", zap.Error(err))
			}
		}
	}

	return core.NewDelegateExtractor(client, f.location, f.logger.Named("delegate")), cleanup, nil
}
