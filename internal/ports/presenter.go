package ports

import (
	"context"

	"github.com/mikey/applytrack/internal/core"
)

// Presenter delivers the outcome of a run somewhere: a terminal, a file, an inbox
type Presenter interface {
	Present(ctx context.Context, result *core.RunResult) error
}
