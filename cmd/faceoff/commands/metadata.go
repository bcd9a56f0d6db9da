package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/sudokufaceoff/faceoff/internal/sanitize"
)

type sanitizeConfig struct {
	dryRun bool
	watch  bool
}

func (a *App) installMetadata() {
	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Maintain the locale files of the store listings",
		Args:  cobra.NoArgs,
	}

	var conf sanitizeConfig
	sanitizeCmd := &cobra.Command{
		Use:   "sanitize",
		Short: "Replace the characters the stores reject in descriptions and release notes",
		Long: `Replace the characters the stores reject in the description and whatsNew fields of every locale file.
Typographic quotes, dashes, ellipses, special spaces and invisible characters are replaced by their plain equivalent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sanitize.New(a.config.MetadataDir, sanitize.WithDryRun(conf.dryRun))
			out := cmd.OutOrStdout()

			rep, err := s.Run()
			if err != nil {
				return err
			}
			printSanitizeReport(out, rep, conf.dryRun)

			if !conf.watch {
				return nil
			}
			fmt.Fprintf(out, "Watching %s for changes. Press Ctrl+C to stop.\n", a.config.MetadataDir)
			return s.Watch(cmd.Context(), func(fr sanitize.FileReport) {
				if fr.Replacements() > 0 {
					printFileReport(out, fr)
				}
			})
		},
	}
	sanitizeCmd.Flags().BoolVar(&conf.dryRun, "dry-run", false, "report the replacements without writing the files")
	sanitizeCmd.Flags().BoolVarP(&conf.watch, "watch", "w", false, "keep sanitizing locale files as they change")

	metadataCmd.AddCommand(sanitizeCmd)
	a.cmd.AddCommand(metadataCmd)
}

func printFileReport(w io.Writer, fr sanitize.FileReport) {
	fmt.Fprintf(w, "%s: %d in description, %d in whatsNew\n", fr.Path, fr.Description, fr.WhatsNew)
}

func printSanitizeReport(w io.Writer, rep sanitize.Report, dryRun bool) {
	for _, fr := range rep.Files {
		if fr.Replacements() > 0 {
			printFileReport(w, fr)
		}
	}

	verb := "changed"
	if dryRun {
		verb = "would change"
	}
	fmt.Fprintf(w, "Scanned %d locale files, %s %d, %d replacements\n", rep.Scanned(), verb, rep.Changed, rep.Replacements)
}
