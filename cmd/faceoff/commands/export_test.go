package commands

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sudokufaceoff/faceoff/internal/config"
	"gopkg.in/yaml.v3"
)

// WithAppStoreURL overrides the App Store Connect API URL.
func WithAppStoreURL(u string) Options {
	return func(o *options) {
		o.appStoreURL = u
	}
}

// WithPlayStoreURL overrides the Google Play Developer API URL.
func WithPlayStoreURL(u string) Options {
	return func(o *options) {
		o.playStoreURL = u
	}
}

// WithSelf overrides the command line re-executing faceoff.
func WithSelf(self ...string) Options {
	return func(o *options) {
		o.self = self
	}
}

// NewForTests creates a new App instance for testing purposes, using a generated configuration
// file. An empty metadata directory is replaced by a temporary one.
func NewForTests(t *testing.T, conf *config.Config, opts []Options, args ...string) *App {
	t.Helper()

	p := GenerateTestConfig(t, conf)

	a, err := New(opts...)
	require.NoError(t, err, "Setup: failed to create app")
	a.cmd.SetArgs(append([]string{"--config", p}, args...))
	a.cmd.SetOut(io.Discard)
	a.cmd.SetErr(io.Discard)
	return a
}

// GenerateTestConfig generates a temporary config file for testing.
func GenerateTestConfig(t *testing.T, origConf *config.Config) string {
	t.Helper()

	var conf config.Config
	if origConf != nil {
		conf = *origConf
	}
	if conf.MetadataDir == "" {
		conf.MetadataDir = t.TempDir()
	}
	if conf.HTTPTimeout == 0 {
		conf.HTTPTimeout = 5 * time.Second
	}

	d, err := yaml.Marshal(conf)
	require.NoError(t, err, "Setup: failed to marshal config for tests")

	confPath := filepath.Join(t.TempDir(), "testconfig.yaml")
	require.NoError(t, os.WriteFile(confPath, d, 0600), "Setup: failed to write config for tests")

	return confPath
}

// SetOutput sets where the commands print.
func (a *App) SetOutput(stdout, stderr io.Writer) {
	a.cmd.SetOut(stdout)
	a.cmd.SetErr(stderr)
}

// SetSilenceUsage set the SilenceUsage flag on root command for tests.
func (a *App) SetSilenceUsage(silence bool) {
	a.cmd.SilenceUsage = silence
}

// Config returns the configuration loaded by the last run.
func (a *App) Config() config.Config {
	return a.config
}
