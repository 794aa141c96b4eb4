package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/happy-v587/github-trending/internal/cache"
	"github.com/happy-v587/github-trending/internal/config"
	"github.com/happy-v587/github-trending/internal/history"
	"github.com/happy-v587/github-trending/internal/report"
	"github.com/happy-v587/github-trending/internal/trending"
)

var errEmptyResult = errors.New("no repositories found")

const exportStampLayout = "20060102_150405"

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	opts, err := resolveOptions(cmd.Flags(), cfg)
	if err != nil {
		return err
	}

	fetcher := newFetcher(cfg, opts)
	stderr := cmd.ErrOrStderr()
	if !opts.Quiet {
		fmt.Fprintln(stderr, "Fetching trending repositories...")
	}

	result := fetcher.Fetch(cmd.Context(), trending.Params{
		Language: opts.Language,
		Since:    opts.Since,
		UseCache: !opts.NoCache,
	})
	reportResult(stderr, result, opts.Quiet)
	recordHistory(cfg, opts, result)

	if len(result.Repos) == 0 {
		return errEmptyResult
	}

	out := cmd.OutOrStdout()
	if !opts.Quiet {
		if err := render(out, result.Repos, opts, cfg); err != nil {
			return err
		}
	}

	paths, exportErr := export(result.Repos, opts.Export, ".", time.Now())
	for _, p := range paths {
		fmt.Fprintf(stderr, "Exported to %s\n", p)
	}
	if exportErr != nil {
		return exportErr
	}

	if opts.Quiet {
		return report.WriteJSON(out, result.Repos)
	}
	return nil
}

func newFetcher(cfg *config.Config, opts options) *trending.Fetcher {
	store := cache.NewStore(cfg.CacheFile, opts.CacheTimeout)
	return trending.New(trending.ClientConfig{
		BaseURL:   cfg.BaseURL,
		Timeout:   opts.Timeout,
		UserAgent: cfg.UserAgent,
	}, store, slog.Default())
}

// reportResult prints where the data came from and any non-fatal problems.
func reportResult(w io.Writer, r trending.Result, quiet bool) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  [warn] %v\n", e)
	}
	if quiet {
		return
	}
	switch r.Source {
	case trending.SourceCache:
		fmt.Fprintln(w, "Using cached data")
	case trending.SourceFallback:
		fmt.Fprintln(w, "GitHub unavailable, using cached data")
	}
}

func render(w io.Writer, repos []cache.Repository, opts options, cfg *config.Config) error {
	switch opts.Format {
	case "table", "markdown":
		style := report.TableStyleBox
		if opts.Format == "markdown" {
			style = report.TableStyleMarkdown
		}
		shown := report.Limit(report.SortByStarsToday(repos), opts.Limit)
		report.RenderTable(w, shown, style, cfg.MaxDescriptionLength)
		return nil
	default:
		return report.RenderSummary(w, repos, report.SummaryOptions{
			Title:          summaryTitle(opts),
			Limit:          opts.Limit,
			MaxDescription: cfg.MaxDescriptionLength,
		})
	}
}

func summaryTitle(opts options) string {
	title := "GitHub Trending"
	if opts.Language != "" {
		title += " · " + opts.Language
	}
	if opts.Since != trending.Daily {
		title += " · " + string(opts.Since)
	}
	return title
}

// export writes the full, unsorted result in the requested formats and returns
// the files it created.
func export(repos []cache.Repository, kind, dir string, now time.Time) ([]string, error) {
	if kind == "" {
		return nil, nil
	}
	base := filepath.Join(dir, "github_trending_"+now.Format(exportStampLayout))

	var paths []string
	if kind == "csv" || kind == "both" {
		p := base + ".csv"
		if err := report.ExportCSV(repos, p); err != nil {
			return paths, fmt.Errorf("exporting csv: %w", err)
		}
		paths = append(paths, p)
	}
	if kind == "json" || kind == "both" {
		p := base + ".json"
		if err := report.ExportJSON(repos, p); err != nil {
			return paths, fmt.Errorf("exporting json: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// recordHistory archives fresh network results. Failures only warn.
func recordHistory(cfg *config.Config, opts options, r trending.Result) {
	if !cfg.History.Enabled || r.Source != trending.SourceNetwork || len(r.Repos) == 0 {
		return
	}
	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		slog.Warn("opening history", "err", err)
		return
	}
	defer db.Close()

	l := history.Listing{Language: opts.Language, Since: string(opts.Since)}
	if err := db.Record(l, r.Repos, time.Now()); err != nil {
		slog.Warn("recording history", "err", err)
	}
}
