// Package commands implements the faceoff command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sudokufaceoff/faceoff/internal/cli"
	"github.com/sudokufaceoff/faceoff/internal/config"
	"github.com/sudokufaceoff/faceoff/internal/constants"
)

// App represents the application.
type App struct {
	cmd   *cobra.Command
	viper *viper.Viper

	verbosity int
	config    config.Config

	opts options
}

type options struct {
	appStoreURL  string
	playStoreURL string
	self         []string
}

// Options represents an optional function to override App default values.
type Options func(*options)

// New creates a new App instance with default values.
func New(args ...Options) (*App, error) {
	a := App{
		viper: viper.New(),
		opts: options{
			appStoreURL:  constants.AppStoreConnectURL,
			playStoreURL: constants.PlayPublisherURL,
		},
	}
	for _, opt := range args {
		opt(&a.opts)
	}

	a.cmd = &cobra.Command{
		Use:           constants.CmdName + " COMMAND",
		Short:         "Sudoku Face Off store and game tooling",
		Long:          "Sudoku Face Off tooling to maintain store listings, publish them to the App Store and Google Play, and build game invitations.",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetVerbosity(a.verbosity)

			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			c, err := config.Load(a.viper, cli.ConfigDir(a.viper))
			if err != nil {
				return err
			}
			a.config = c
			slog.Debug("Loaded configuration", "metadataDir", c.MetadataDir, "httpTimeout", c.HTTPTimeout)

			return nil
		},
	}
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	installRootCmd(&a)
	cli.InstallConfigFlag(a.cmd)
	config.SetDefaults(a.viper)
	if err := a.viper.BindPFlag("metadatadir", a.cmd.PersistentFlags().Lookup("metadata-dir")); err != nil {
		return nil, err
	}

	a.installMetadata()
	a.installPush()
	a.installSupportURL()
	a.installShare()
	a.installGame()
	a.installVersion()

	return &a, nil
}

func installRootCmd(app *App) {
	cmd := app.cmd

	cmd.PersistentFlags().CountVarP(&app.verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().String("metadata-dir", constants.DefaultMetadataDir, "directory holding the locale files")

	if err := cmd.MarkPersistentFlagDirname("metadata-dir"); err != nil {
		panic(fmt.Sprintf("failed to mark metadata-dir flag as directory: %v", err))
	}
}

// Run executes the command and associated process, returning an error if any.
// An interrupt or termination signal cancels the running command.
func (a App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.cmd.ExecuteContext(ctx)
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}

// selfCommand is the command line re-executing faceoff with the current configuration.
func (a App) selfCommand() ([]string, error) {
	if a.opts.self != nil {
		return append([]string{}, a.opts.self...), nil
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("could not locate faceoff executable: %v", err)
	}
	self := []string{exe}

	if f := a.viper.ConfigFileUsed(); f != "" {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		self = append(self, "--config", f)
	}
	if dir, err := filepath.Abs(a.config.MetadataDir); err == nil {
		self = append(self, "--metadata-dir", dir)
	}
	if a.verbosity > 0 {
		self = append(self, fmt.Sprintf("--verbose=%d", a.verbosity))
	}
	return self, nil
}
