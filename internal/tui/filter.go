package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/happy-v587/github-trending/internal/cache"
	"github.com/happy-v587/github-trending/internal/report"
)

// filterBar selects which languages of the fetched listing are shown. No
// active language means all of them.
type filterBar struct {
	languages    []string
	active       map[string]bool
	filterMode   bool
	filterCursor int
}

func newFilterBar() filterBar {
	return filterBar{active: make(map[string]bool)}
}

// setLanguages rebuilds the tabs from a listing, most common language first,
// and drops selections that no longer exist.
func (f *filterBar) setLanguages(repos []cache.Repository) {
	counts := report.LanguageCounts(repos, 0)
	f.languages = f.languages[:0]
	present := make(map[string]bool, len(counts))
	for _, c := range counts {
		f.languages = append(f.languages, c.Language)
		present[c.Language] = true
	}
	for l := range f.active {
		if !present[l] {
			delete(f.active, l)
		}
	}
	if f.filterCursor >= len(f.languages) {
		f.filterCursor = max(0, len(f.languages)-1)
	}
}

func (f *filterBar) toggle(lang string) {
	if f.active[lang] {
		delete(f.active, lang)
	} else {
		f.active[lang] = true
	}
}

func (f *filterBar) toggleCurrent() {
	if f.filterCursor < len(f.languages) {
		f.toggle(f.languages[f.filterCursor])
	}
}

func (f *filterBar) allows(lang string) bool {
	return len(f.active) == 0 || f.active[lang]
}

func (f *filterBar) activeLanguages() []string {
	if len(f.active) == 0 {
		return nil
	}
	var out []string
	for _, l := range f.languages {
		if f.active[l] {
			out = append(out, l)
		}
	}
	return out
}

func (f *filterBar) activeLabel() string {
	active := f.activeLanguages()
	if active == nil {
		return "All"
	}
	return strings.Join(active, ", ")
}

func (f *filterBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	if len(f.active) == 0 {
		parts = append(parts, tabActiveStyle.Render("All"))
	} else {
		parts = append(parts, tabInactiveStyle.Render("All"))
	}

	for i, l := range f.languages {
		style := tabInactiveStyle
		if f.active[l] {
			style = tabActiveStyle
		}
		label := l
		if f.filterMode && i == f.filterCursor {
			label = "[" + l + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Stop adding tabs once the row would overflow
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
