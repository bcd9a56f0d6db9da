package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sudokufaceoff/faceoff/internal/share"
)

func (a *App) installShare() {
	var platform string

	cmd := &cobra.Command{
		Use:   "share ROOM_CODE|LINK",
		Short: "Print the invitation message of a room",
		Long: `Print the invitation message of a room, given its code or its sudokufaceoff:// link.
iOS invitations only link to the App Store and Android ones only to Google Play. Any other platform gets both links.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.config.ValidateStores(); err != nil {
				return err
			}

			code := args[0]
			if strings.Contains(code, "://") {
				c, err := share.ParseDeepLink(code)
				if err != nil {
					return err
				}
				code = c
			}

			msg, err := share.Message(code, share.Platform(platform), share.Stores{
				AppleAppID:  a.config.Apple.AppID,
				PackageName: a.config.Google.PackageName,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&platform, "platform", "p", string(share.Web), "platform the invitation is sent from (ios, android or web)")

	a.cmd.AddCommand(cmd)
}
