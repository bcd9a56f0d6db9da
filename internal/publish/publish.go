// Package publish pushes one locale file to both stores, one child process per store.
//
// The Apple step runs first. The Google step only starts once the Apple one exited cleanly,
// and the first failure stops the run.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sudokufaceoff/faceoff/internal/cmdutils"
	"github.com/sudokufaceoff/faceoff/internal/constants"
	"github.com/ubuntu/decorate"
)

// ErrEmptyCommand is returned for a step without any command to run.
var ErrEmptyCommand = errors.New("empty step command")

// Store names of the publish steps.
const (
	Apple  = "apple"
	Google = "google"
)

// Step is one child process of a publish run.
type Step struct {
	Store   string
	Command []string
}

func (s Step) String() string {
	return s.Store + " (" + strings.Join(s.Command, " ") + ")"
}

// Steps returns the Apple then Google steps publishing localeCode.
//
// A step without override runs self followed by "push <store> <localeCode>".
// An override is run as is, with localeCode appended.
func Steps(localeCode string, self, appleOverride, googleOverride []string) []Step {
	step := func(store string, override []string) Step {
		if len(override) > 0 {
			return Step{Store: store, Command: append(append([]string{}, override...), localeCode)}
		}
		cmd := append([]string{}, self...)
		return Step{Store: store, Command: append(cmd, "push", store, localeCode)}
	}

	return []Step{step(Apple, appleOverride), step(Google, googleOverride)}
}

// ExitError is returned when a step exits with a non zero code.
type ExitError struct {
	Store string
	Code  int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s publish step exited with code %d", e.Store, e.Code)
}

type runFunc func(ctx context.Context, cmd string, args []string, opts ...cmdutils.Options) error

// Publisher runs the publish steps in order.
type Publisher struct {
	steps  []Step
	runID  string
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger

	run runFunc
}

type options struct {
	runID  string
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger

	run runFunc
}

// Options represents an optional function to override Publisher default values.
type Options func(*options)

// WithOutput sets where the steps output is streamed. Defaults to the process stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Options {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithRunID forces the run ID instead of generating a new one.
func WithRunID(id string) Options {
	return func(o *options) {
		o.runID = id
	}
}

// WithLogger sets the logger of the publisher.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New returns a Publisher running steps.
func New(steps []Step, args ...Options) (*Publisher, error) {
	for _, s := range steps {
		if len(s.Command) == 0 || s.Command[0] == "" {
			return nil, fmt.Errorf("%w for %s", ErrEmptyCommand, s.Store)
		}
	}

	opts := options{
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    slog.Default(),
		run:    cmdutils.Run,
	}
	for _, opt := range args {
		opt(&opts)
	}
	if opts.runID == "" {
		opts.runID = uuid.NewString()
	}

	return &Publisher{
		steps:  steps,
		runID:  opts.runID,
		stdout: opts.stdout,
		stderr: opts.stderr,
		log:    opts.log.With("run", opts.runID),
		run:    opts.run,
	}, nil
}

// RunID is the identifier passed to every step of the run.
func (p Publisher) RunID() string {
	return p.runID
}

// Run executes the steps in order, stopping at the first failing one.
func (p Publisher) Run(ctx context.Context) (err error) {
	defer decorate.OnError(&err, "publish run %s failed", p.runID)

	p.log.Info("Starting publish run", "steps", len(p.steps))
	for _, s := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.log.Info("Running publish step", "store", s.Store, "command", s.Command)
		err := p.run(ctx, s.Command[0], s.Command[1:],
			cmdutils.WithOutput(p.stdout, p.stderr),
			cmdutils.WithEnv(constants.RunIDEnv+"="+p.runID))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s step interrupted: %w", s.Store, ctxErr)
		}
		if code, ok := cmdutils.ExitCode(err); ok {
			return &ExitError{Store: s.Store, Code: code}
		}
		if err != nil {
			return fmt.Errorf("could not run %s step: %v", s, err)
		}
		p.log.Info("Publish step done", "store", s.Store)
	}

	return nil
}
