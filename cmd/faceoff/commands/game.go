package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sudokufaceoff/faceoff/internal/game"
)

type gameConfig struct {
	lives   string
	request string
}

func (a *App) installGame() {
	gameCmd := &cobra.Command{
		Use:   "game",
		Short: "Game helpers",
		Args:  cobra.NoArgs,
	}

	var conf gameConfig
	startCmd := &cobra.Command{
		Use:   "start [DIFFICULTY]",
		Short: "Print the starting configuration of a game",
		Long: fmt.Sprintf(`Print the starting configuration of a game as JSON.
The difficulty is one of %v. Players start with %d lives unless --lives is set.
--request takes a start request as sent by the app instead, for example {"difficulty": "easy", "lives": 3}.`, game.Difficulties, game.DefaultLives),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c game.Config
			var err error

			switch {
			case conf.request != "":
				if len(args) > 0 || conf.lives != "" {
					return errors.New("--request cannot be combined with a difficulty or --lives")
				}
				c, err = game.StartFromJSON([]byte(conf.request))
			case len(args) == 1:
				var opts []game.Options
				if opts, err = game.ParseLives(conf.lives); err == nil {
					c, err = game.Start(game.Difficulty(args[0]), opts...)
				}
			default:
				return errors.New("a difficulty or --request is required")
			}
			if err != nil {
				return err
			}

			d, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("could not encode game configuration: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(d))
			return nil
		},
	}
	startCmd.Flags().StringVarP(&conf.lives, "lives", "l", "", "number of lives the players start with")
	startCmd.Flags().StringVar(&conf.request, "request", "", "JSON start request")

	gameCmd.AddCommand(startCmd)
	a.cmd.AddCommand(gameCmd)
}
