package presenter

import (
	"context"
	"errors"

	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/ports"
)

// Chain runs every presenter in order. One failing does not stop the rest.
type Chain []ports.Presenter

// Present calls each presenter and joins their errors
func (c Chain) Present(ctx context.Context, result *core.RunResult) error {
	var errs []error
	for _, p := range c {
		if err := p.Present(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
