package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/happy-v587/github-trending/internal/cache"
	"github.com/happy-v587/github-trending/internal/config"
	"github.com/happy-v587/github-trending/internal/history"
)

var (
	flagPruneOlderThan string
	flagHistoryDays    int
	flagHistoryLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history [owner/repo]",
	Short: "Show repositories that keep trending",
	Long: `Without arguments, list the repositories seen on the most days within the
window. With a repository name, list every day it was recorded.

History is only collected when history.enabled is set in the config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if !cfg.History.Enabled {
			fmt.Fprintln(cmd.ErrOrStderr(), "  [warn] history is disabled; set history.enabled in "+configPathForDisplay())
		}

		db, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			apps, err := db.Appearances(args[0])
			if err != nil {
				return err
			}
			printAppearances(out, args[0], apps)
			return nil
		}

		since := time.Now().AddDate(0, 0, -flagHistoryDays)
		top, err := db.MostPersistent(since, flagHistoryLimit)
		if err != nil {
			return err
		}
		printPersistent(out, flagHistoryDays, top)
		return nil
	},
}

func printAppearances(w io.Writer, name string, apps []history.Appearance) {
	if len(apps) == 0 {
		fmt.Fprintf(w, "No history for %s.\n", name)
		return
	}
	fmt.Fprintf(w, "%s: %d appearance(s)\n", name, len(apps))
	for _, a := range apps {
		listing := a.Listing.Since
		if a.Listing.Language != "" {
			listing = a.Listing.Language + "/" + listing
		}
		fmt.Fprintf(w, "  %s  %-16s #%-3d %d stars (+%d)\n", a.Day, listing, a.Rank, a.Stars, a.StarsToday)
	}
}

func printPersistent(w io.Writer, days int, top []history.Persistent) {
	if len(top) == 0 {
		fmt.Fprintln(w, "No history recorded yet.")
		return
	}
	fmt.Fprintf(w, "Most persistent repositories, last %dd:\n", days)
	for i, p := range top {
		fmt.Fprintf(w, "%2d. %-40s %3d day(s)  best #%d  last %s\n", i+1, p.Name, p.Days, p.BestRank, p.LastSeen)
	}
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the history archive",
	Long: `Delete recorded appearances older than the retention period and reclaim disk space.

Uses history.retention from config (default: 90d) unless overridden with --older-than.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		retention := cfg.HistoryRetention()
		if flagPruneOlderThan != "" {
			d, err := config.ParseDays(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		db, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		out := cmd.OutOrStdout()
		if deleted == 0 {
			fmt.Fprintln(out, "Nothing to prune.")
		} else {
			fmt.Fprintf(out, "Pruned %d appearance(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache and history statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		out := cmd.OutOrStdout()

		store := cache.NewStore(cfg.CacheFile, cfg.CacheTimeoutDuration())
		printSnapshotStats(out, store, time.Now())

		dbPath := cfg.HistoryPath()
		if !cfg.History.Enabled && !fileExists(dbPath) {
			fmt.Fprintln(out, "History: disabled")
			return nil
		}
		db, err := history.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
		fmt.Fprintf(out, "History: %s\n", dbPath)
		fmt.Fprintf(out, "Appearances: %d\n", count)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		return nil
	},
}

func printSnapshotStats(w io.Writer, store *cache.Store, now time.Time) {
	fmt.Fprintf(w, "Cache: %s\n", store.Path())
	snap, err := store.Snapshot()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(w, "Snapshot: none")
		} else {
			fmt.Fprintf(w, "Snapshot: unreadable (%v)\n", err)
		}
		return
	}
	age := now.Sub(snap.CapturedAt())
	state := "fresh"
	if age >= store.Timeout() {
		state = "stale"
	}
	fmt.Fprintf(w, "Snapshot: %d repositories, %s old (%s)\n", len(snap.Data), formatAge(age), state)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local snapshot",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		store := cache.NewStore(cfg.CacheFile, cfg.CacheTimeoutDuration())
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", store.Path())
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryDays, "days", 30, "window for the persistence ranking, in days")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "number of repositories to list")
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
	cacheCmd.AddCommand(cacheClearCmd)
}

func configPathForDisplay() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultConfigPath()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "0s"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return formatDuration(d)
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
