package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sudokufaceoff/faceoff/internal/appstore"
	"github.com/sudokufaceoff/faceoff/internal/locale"
	"github.com/sudokufaceoff/faceoff/internal/playstore"
	"github.com/sudokufaceoff/faceoff/internal/publish"
)

func (a *App) installPush() {
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Push a locale file to the stores",
		Args:  cobra.NoArgs,
	}

	pushCmd.AddCommand(&cobra.Command{
		Use:   "apple LOCALE",
		Short: "Push a locale file to the editable App Store version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.loadLocale(args[0])
			if err != nil {
				return err
			}
			c, err := a.appStoreClient()
			if err != nil {
				return err
			}
			if err := c.PushListing(cmd.Context(), a.config.Apple.AppID, args[0], l); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s listing to the App Store\n", args[0])
			return nil
		},
	})

	pushCmd.AddCommand(&cobra.Command{
		Use:   "google LOCALE",
		Short: "Push a locale file to the Google Play store listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.loadLocale(args[0])
			if err != nil {
				return err
			}
			if err := a.config.ValidateGoogle(); err != nil {
				return err
			}
			c, err := playstore.NewFromFile(cmd.Context(), a.config.Google.PackageName, a.config.Google.ServiceAccountPath,
				playstore.WithBaseURL(a.opts.playStoreURL), playstore.WithTimeout(a.config.HTTPTimeout))
			if err != nil {
				return err
			}
			if err := c.PushListing(cmd.Context(), args[0], l); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s listing to Google Play\n", args[0])
			return nil
		},
	})

	pushCmd.AddCommand(&cobra.Command{
		Use:   "both LOCALE",
		Short: "Push a locale file to the App Store then to Google Play",
		Long: `Push a locale file to the App Store then to Google Play.
Each store is pushed by its own child process. Google Play is only pushed once the App Store push succeeded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := locale.Find(a.config.MetadataDir, args[0]); err != nil {
				return err
			}

			self, err := a.selfCommand()
			if err != nil {
				return err
			}
			steps := publish.Steps(args[0], self, a.config.Publish.AppleCommand, a.config.Publish.GoogleCommand)
			p, err := publish.New(steps, publish.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if err := p.Run(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s listing to both stores\n", args[0])
			return nil
		},
	})

	a.cmd.AddCommand(pushCmd)
}

func (a App) loadLocale(code string) (locale.Listing, error) {
	p, err := locale.Find(a.config.MetadataDir, code)
	if err != nil {
		return locale.Listing{}, err
	}
	return locale.Load(p)
}

func (a App) appStoreClient() (*appstore.Client, error) {
	if err := a.config.ValidateApple(); err != nil {
		return nil, err
	}
	key, err := appstore.LoadKey(a.config.Apple.KeyPath)
	if err != nil {
		return nil, err
	}
	signer, err := appstore.NewSigner(a.config.Apple.KeyID, a.config.Apple.IssuerID, key)
	if err != nil {
		return nil, err
	}
	return appstore.New(signer, appstore.WithBaseURL(a.opts.appStoreURL), appstore.WithTimeout(a.config.HTTPTimeout)), nil
}
