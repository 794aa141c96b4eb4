package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/happy-v587/github-trending/internal/config"
	"github.com/happy-v587/github-trending/internal/trending"
	"github.com/happy-v587/github-trending/internal/tui"
)

var errNotTerminal = errors.New("browse needs an interactive terminal; use the default command or --quiet for pipes")

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the trending list interactively",
	Long:  "Open a two-pane browser over the trending list with search, language filters and sorting.",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func init() {
	addFetchFlags(browseCmd.Flags())

	browseCmd.RegisterFlagCompletionFunc("language", completeLanguage)
	browseCmd.RegisterFlagCompletionFunc("since", completeSince)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errNotTerminal
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	opts, err := resolveOptions(cmd.Flags(), cfg)
	if err != nil {
		return err
	}

	// Log lines would tear the alternate screen.
	if !flagVerbose {
		slog.SetDefault(newLogger(io.Discard, false))
	}

	return tui.Run(tui.RunOpts{
		Fetcher: newFetcher(cfg, opts),
		Params: trending.Params{
			Language: opts.Language,
			Since:    opts.Since,
			UseCache: !opts.NoCache,
		},
		Timeout: opts.Timeout,
	})
}
