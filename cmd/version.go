package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/happy-v587/github-trending/internal/update"
)

var flagVersionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ghtrending %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagVersionCheck {
			return
		}
		if res := update.Check(cmd.Context(), version); res != nil {
			fmt.Fprintf(out, "A newer version is available: %s\n", res.LatestVersion)
			if res.URL != "" {
				fmt.Fprintln(out, res.URL)
			}
		} else {
			fmt.Fprintln(out, "No newer release found.")
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionCheck, "check", false, "check GitHub for a newer release")
}
