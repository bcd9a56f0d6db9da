package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sudokufaceoff/faceoff/internal/constants"
)

func (a *App) installVersion() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Returns the running version of " + constants.CmdName + " and exits",
		Args:  cobra.NoArgs,
		// The version does not depend on the configuration.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cmd.SilenceUsage = true
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", constants.CmdName, constants.Version)
			return nil
		},
	}
	a.cmd.AddCommand(cmd)
}
