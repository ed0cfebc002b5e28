package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/tracker"
)

// ErrMissingToken is returned when no access token was supplied
var ErrMissingToken = errors.New("no access token: pass --token or set APPLYTRACK_GMAIL_ACCESS_TOKEN")

// CliFrontend performs a single run from the command line
type CliFrontend struct {
	runner  *tracker.Runner
	token   string
	out     io.Writer
	logger  *zap.Logger
	verbose bool
}

// NewCliFrontend creates a new CLI frontend
func NewCliFrontend(runner *tracker.Runner, token string, out io.Writer, logger *zap.Logger, verbose bool) *CliFrontend {
	return &CliFrontend{
		runner:  runner,
		token:   token,
		out:     out,
		logger:  logger,
		verbose: verbose,
	}
}

// Start runs once and reports the outcome. The table itself is written by the presenter chain.
func (f *CliFrontend) Start() error {
	return f.Run(context.Background())
}

// Run performs the run with ctx
func (f *CliFrontend) Run(ctx context.Context) error {
	if f.token == "" {
		fmt.Fprintln(f.out, "Error: "+ErrMissingToken.Error())
		return ErrMissingToken
	}

	fmt.Fprintln(f.out, "Searching mailbox for job application emails...")
	startTime := time.Now()

	result, err := f.runner.Run(ctx, f.token)
	duration := time.Since(startTime)

	var authErr *core.AuthError
	var fetchErr *core.FetchError
	switch {
	case err == nil:
	case errors.Is(err, core.ErrNoMessages):
		// the presenter has already said so
		return nil
	case errors.As(err, &authErr):
		fmt.Fprintln(f.out, "Authentication failed: the mail provider declined the access token. Obtain a new token and try again.")
		return err
	case errors.As(err, &fetchErr):
		fmt.Fprintln(f.out, "Failed to fetch emails. Please try again.")
		return err
	default:
		fmt.Fprintf(f.out, "Error: %v\n", err)
		return err
	}

	if f.verbose {
		fmt.Fprintf(f.out, "Found %d messages: %d tracked, %d skipped, %d ignored in %v\n",
			result.Found, len(result.Records), result.Skipped, result.Ignored, duration.Round(time.Millisecond))
	}

	return nil
}

// Stop is a no-op for the CLI frontend
func (f *CliFrontend) Stop() error {
	return nil
}
