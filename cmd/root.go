package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/happy-v587/github-trending/internal/config"
	"github.com/happy-v587/github-trending/internal/trending"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const envPrefix = "GHTRENDING"

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ghtrending",
	Short: "Show what is trending on GitHub",
	Long: `ghtrending fetches the GitHub trending page, prints a summary of the
repositories on it and can export them as CSV or JSON.

Results are cached on disk for an hour. When GitHub cannot be reached a
snapshot still within the cache timeout is used instead, even with --no-cache.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runShow,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file")
	pf.BoolVar(&flagVerbose, "verbose", false, "log debug output to stderr")

	addFetchFlags(rootCmd.Flags())
	addOutputFlags(rootCmd.Flags())

	rootCmd.RegisterFlagCompletionFunc("language", completeLanguage)
	rootCmd.RegisterFlagCompletionFunc("since", completeSince)
	rootCmd.RegisterFlagCompletionFunc("export", fixedCompletion("csv", "json", "both"))
	rootCmd.RegisterFlagCompletionFunc("format", fixedCompletion("summary", "table", "markdown"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cacheCmd)
}

// addFetchFlags registers the flags that select and load a listing.
func addFetchFlags(f *pflag.FlagSet) {
	f.StringP("language", "l", "", "programming language filter (e.g. go, python)")
	f.StringP("since", "s", string(trending.Daily), "time window: daily, weekly or monthly")
	f.Bool("no-cache", false, "ignore a fresh snapshot and fetch from GitHub")
	f.Duration("cache-timeout", 0, "how long a snapshot stays fresh (default from config)")
	f.Duration("timeout", 0, "request timeout (default from config)")
}

func addOutputFlags(f *pflag.FlagSet) {
	f.IntP("limit", "n", 0, "number of repositories to show (default from config)")
	f.BoolP("all", "a", false, "show every repository on the page")
	f.StringP("export", "e", "", "export to file: csv, json or both")
	f.BoolP("quiet", "q", false, "print JSON only")
	f.StringP("format", "f", "summary", "output format: summary, table or markdown")
}

// setup runs before every command: .env first, then logging.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "  [warn] reading .env: %v\n", err)
	}
	slog.SetDefault(newLogger(os.Stderr, flagVerbose))
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// options is the resolved invocation after flags, GHTRENDING_* variables and
// the config file have been layered.
type options struct {
	Language     string
	Since        trending.Since
	Limit        int
	All          bool
	Export       string
	NoCache      bool
	Quiet        bool
	Format       string
	CacheTimeout time.Duration
	Timeout      time.Duration
}

func newViper(flags *pflag.FlagSet, cfg *config.Config) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("since", string(trending.Daily))
	v.SetDefault("format", "summary")
	v.SetDefault("limit", cfg.DefaultLimit)
	v.SetDefault("cache-timeout", cfg.CacheTimeoutDuration())
	v.SetDefault("timeout", cfg.RequestTimeoutDuration())

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	return v, nil
}

func resolveOptions(flags *pflag.FlagSet, cfg *config.Config) (options, error) {
	v, err := newViper(flags, cfg)
	if err != nil {
		return options{}, err
	}

	since, err := trending.ParseSince(v.GetString("since"))
	if err != nil {
		return options{}, err
	}

	opts := options{
		Language:     strings.TrimSpace(v.GetString("language")),
		Since:        since,
		Limit:        v.GetInt("limit"),
		All:          v.GetBool("all"),
		Export:       strings.ToLower(v.GetString("export")),
		NoCache:      v.GetBool("no-cache"),
		Quiet:        v.GetBool("quiet"),
		Format:       strings.ToLower(v.GetString("format")),
		CacheTimeout: v.GetDuration("cache-timeout"),
		Timeout:      v.GetDuration("timeout"),
	}

	switch opts.Export {
	case "", "csv", "json", "both":
	default:
		return options{}, fmt.Errorf("invalid --export value %q (valid: csv, json, both)", opts.Export)
	}
	switch opts.Format {
	case "summary", "table", "markdown":
	default:
		return options{}, fmt.Errorf("invalid --format value %q (valid: summary, table, markdown)", opts.Format)
	}
	if opts.Limit < 0 {
		return options{}, fmt.Errorf("--limit must not be negative")
	}
	if opts.CacheTimeout < 0 || opts.Timeout < 0 {
		return options{}, fmt.Errorf("timeouts must not be negative")
	}
	if opts.All {
		opts.Limit = 0
	}
	return opts, nil
}

func completeLanguage(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, l := range cfg.Languages {
		if strings.HasPrefix(l, strings.ToLower(toComplete)) {
			out = append(out, l)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeSince(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return fixedCompletion(string(trending.Daily), string(trending.Weekly), string(trending.Monthly))(cmd, args, toComplete)
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
