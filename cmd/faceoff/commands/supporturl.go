package commands

import (
	"github.com/spf13/cobra"
	"github.com/sudokufaceoff/faceoff/internal/supporturl"
)

func (a *App) installSupportURL() {
	cmd := &cobra.Command{
		Use:   "support-url",
		Short: "Show the support URLs to set in App Store Connect",
		Long: `Check the App Store Connect credentials by fetching the app, then list the support URL of every locale file.
The support URL cannot be set through the App Store Connect API and has to be set by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.appStoreClient()
			if err != nil {
				return err
			}
			_, err = supporturl.New(c, a.config.Apple.AppID, a.config.MetadataDir, supporturl.WithOutput(cmd.OutOrStdout())).Run(cmd.Context())
			return err
		},
	}
	a.cmd.AddCommand(cmd)
}
