// Package cmdutils provides utility functions for running commands.
package cmdutils

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// DefaultWaitDelay is how long a cancelled command has to exit after being interrupted
// before it is killed.
const DefaultWaitDelay = 5 * time.Second

type options struct {
	stdout    io.Writer
	stderr    io.Writer
	env       []string
	waitDelay time.Duration
}

// Options represents an optional function to override Run default values.
type Options func(*options)

// WithOutput sets where the command stdout and stderr are written.
// By default, they are discarded.
func WithOutput(stdout, stderr io.Writer) Options {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithEnv adds "key=value" entries to the environment inherited by the command.
func WithEnv(env ...string) Options {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Options {
	return func(o *options) {
		o.waitDelay = d
	}
}

// Run executes the command specified by cmd with arguments args using the provided context.
// Cancelling the context interrupts the command, which is killed if it did not exit after the wait delay.
func Run(ctx context.Context, cmd string, args []string, opts ...Options) error {
	o := options{waitDelay: DefaultWaitDelay}
	for _, opt := range opts {
		opt(&o)
	}

	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdout = o.stdout
	c.Stderr = o.stderr
	c.Env = append(os.Environ(), o.env...)
	c.Cancel = func() error {
		if err := c.Process.Signal(os.Interrupt); err != nil {
			return c.Process.Kill()
		}
		return nil
	}
	c.WaitDelay = o.waitDelay

	return c.Run()
}

// ExitCode returns the exit code of a command which ran and failed, and false for any other error.
func ExitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, false
	}
	return exitErr.ExitCode(), true
}
