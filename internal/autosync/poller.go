package autosync

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/tracker"
)

// RunFunc performs one run with an access token
type RunFunc func(ctx context.Context, accessToken string) (*core.RunResult, error)

// Poller triggers a run every interval while the auto_sync preference is on
type Poller struct {
	run      RunFunc
	settings core.SettingsRepository
	token    string
	interval time.Duration
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller. Nothing happens until Start.
func NewPoller(run RunFunc, settings core.SettingsRepository, token string, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		run:      run,
		settings: settings,
		token:    token,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the background ticker
func (p *Poller) Start() error {
	if p.interval <= 0 {
		return errors.New("autosync interval must be positive")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(ctx)

	p.logger.Info("Autosync poller started", zap.Duration("interval", p.interval))
	return nil
}

// Stop cancels any in-flight run and waits for the loop to exit
func (p *Poller) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Tick runs once if auto_sync is on. It reports whether a run was attempted.
func (p *Poller) Tick(ctx context.Context) bool {
	prefs, err := core.LoadSettings(ctx, p.settings)
	if err != nil {
		p.logger.Error("Failed to load settings", zap.Error(err))
		return false
	}
	if !prefs.AutoSync {
		return false
	}
	if p.token == "" {
		p.logger.Warn("Autosync enabled but no access token is configured")
		return false
	}

	_, err = p.run(ctx, p.token)
	switch {
	case err == nil, errors.Is(err, core.ErrNoMessages):
		p.logger.Debug("Autosync run finished")
	case errors.Is(err, tracker.ErrRunInProgress):
		p.logger.Debug("Autosync skipped, run already in progress")
	default:
		p.logger.Warn("Autosync run failed", zap.Error(err))
	}
	return true
}
