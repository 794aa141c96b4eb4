package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/happy-v587/github-trending/internal/cache"
)

const (
	DefaultMaxDescription = 100
	ruleWidth             = 80
	topLanguages          = 5
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	ruleStyle  = lipgloss.NewStyle().Foreground(colorDim)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	langStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	linkStyle  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	labelStyle = lipgloss.NewStyle().Bold(true)
)

type SummaryOptions struct {
	// Title defaults to "GitHub Trending".
	Title string
	// Limit caps the number of repositories shown; 0 shows all.
	Limit int
	// MaxDescription is the display width descriptions are cut to.
	MaxDescription int
	Now            time.Time
}

// RenderSummary writes a console summary of repos: the top entries by stars
// gained, followed by statistics over the whole list.
func RenderSummary(w io.Writer, repos []cache.Repository, opts SummaryOptions) error {
	if len(repos) == 0 {
		_, err := fmt.Fprintln(w, "No repositories found")
		return err
	}
	if opts.Title == "" {
		opts.Title = "GitHub Trending"
	}
	if opts.MaxDescription <= 0 {
		opts.MaxDescription = DefaultMaxDescription
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	rule := ruleStyle.Render(strings.Repeat("=", ruleWidth))
	var b strings.Builder

	b.WriteString("\n" + rule + "\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", opts.Title, opts.Now.Format("2006-01-02 15:04:05"))) + "\n")
	b.WriteString(rule + "\n")

	for i, r := range Limit(SortByStarsToday(repos), opts.Limit) {
		b.WriteString(renderEntry(i+1, r, opts.MaxDescription))
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString(labelStyle.Render("Statistics:") + "\n")
	b.WriteString(fmt.Sprintf("    • Repositories: %d\n", len(repos)))

	var langs []string
	for _, lc := range LanguageCounts(repos, topLanguages) {
		langs = append(langs, fmt.Sprintf("%s(%d)", lc.Language, lc.Count))
	}
	b.WriteString("    • Top languages: " + strings.Join(langs, ", ") + "\n")

	if hot, ok := Hottest(repos); ok {
		b.WriteString(fmt.Sprintf("    • Hottest: %s (+%s stars)\n", nameStyle.Render(hot.Name), formatCount(hot.StarsToday)))
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderEntry(pos int, r cache.Repository, maxDesc int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%2d. %s\n", pos, nameStyle.Render(r.Name))
	if r.Description != "" {
		fmt.Fprintf(&b, "    %s\n", truncate(r.Description, maxDesc))
	}
	fmt.Fprintf(&b, "    Language: %s\n", langStyle.Render(r.Language))
	fmt.Fprintf(&b, "    Stars: %s | Gained: +%s\n", formatCount(r.Stars), formatCount(r.StarsToday))
	fmt.Fprintf(&b, "    Forks: %s\n", formatCount(r.Forks))
	fmt.Fprintf(&b, "    %s\n", linkStyle.Render(r.URL))
	return b.String()
}
