package publish

import (
	"context"

	"github.com/sudokufaceoff/faceoff/internal/cmdutils"
)

// WithRun overrides how step commands are run.
func WithRun(run func(ctx context.Context, cmd string, args []string, opts ...cmdutils.Options) error) Options {
	return func(o *options) {
		o.run = run
	}
}
