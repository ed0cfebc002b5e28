package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/ports"
)

// ErrRunInProgress is returned when a run is requested while another is active
var ErrRunInProgress = errors.New("a run is already in progress")

// SessionBuilder builds the per-run session for a provider access token
type SessionBuilder interface {
	NewSession(ctx context.Context, accessToken string, onProgress func(core.Progress)) (*core.Session, func(), error)
}

// Status is a snapshot of the runner for display
type Status struct {
	Running  bool          `json:"running"`
	Progress core.Progress `json:"progress"`
	Percent  int           `json:"percent"`
	LastRun  time.Time     `json:"last_run,omitempty"`
	LastErr  string        `json:"last_error,omitempty"`
}

// Runner executes one run at a time and keeps the latest result for the frontends
type Runner struct {
	service   *core.TrackerService
	sessions  SessionBuilder
	presenter ports.Presenter
	logger    *zap.Logger

	mu       sync.Mutex
	running  bool
	progress core.Progress
	latest   *core.RunResult
	lastRun  time.Time
	lastErr  error
}

// NewRunner creates a runner. presenter may be nil.
func NewRunner(service *core.TrackerService, sessions SessionBuilder, presenter ports.Presenter, logger *zap.Logger) *Runner {
	return &Runner{
		service:   service,
		sessions:  sessions,
		presenter: presenter,
		logger:    logger,
	}
}

// Run performs a full run with accessToken and presents the result.
// ErrNoMessages is returned together with an empty result.
// A failed run keeps the previous result.
func (r *Runner) Run(ctx context.Context, accessToken string) (*core.RunResult, error) {
	if !r.begin() {
		return nil, ErrRunInProgress
	}

	result, err := r.run(ctx, accessToken)
	r.finish(result, err)

	if err != nil && !errors.Is(err, core.ErrNoMessages) {
		r.logger.Error("Run failed", zap.Error(err))
		return nil, err
	}

	if r.presenter != nil {
		if perr := r.presenter.Present(ctx, result); perr != nil {
			r.logger.Warn("Failed to present run result", zap.Error(perr))
		}
	}

	return result, err
}

func (r *Runner) run(ctx context.Context, accessToken string) (*core.RunResult, error) {
	sess, cleanup, err := r.sessions.NewSession(ctx, accessToken, r.setProgress)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := r.service.Run(ctx, sess)
	if errors.Is(err, core.ErrNoMessages) {
		return &core.RunResult{Records: []core.ApplicationRecord{}}, err
	}
	return result, err
}

func (r *Runner) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return false
	}
	r.running = true
	r.progress = core.Progress{}
	return true
}

func (r *Runner) finish(result *core.RunResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	r.lastRun = time.Now()
	r.lastErr = nil

	switch {
	case err == nil || errors.Is(err, core.ErrNoMessages):
		r.latest = result
	default:
		r.lastErr = err
		r.progress = core.Progress{}
	}
}

func (r *Runner) setProgress(p core.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = p
}

// Latest returns the result of the most recent successful run, or nil
func (r *Runner) Latest() *core.RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Status returns the current progress and the outcome of the last run
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		Running:  r.running,
		Progress: r.progress,
		Percent:  r.progress.Percent(),
		LastRun:  r.lastRun,
	}
	if r.lastErr != nil {
		s.LastErr = r.lastErr.Error()
	}
	return s
}
