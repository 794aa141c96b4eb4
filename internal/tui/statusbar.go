package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	shown, total int
	filterLabel  string
	sortLabel    string
	source       string
	searching    bool
	refreshing   bool
}

func renderStatusBar(s statusInfo, width int) string {
	left := fmt.Sprintf(" %d/%d repos · %s", s.shown, s.total, s.sortLabel)
	if s.filterLabel != "All" {
		left += " · " + s.filterLabel
	}
	if s.source != "" {
		left += " · " + s.source
	}
	if s.refreshing {
		left += " (fetching...)"
	}

	right := " / search  f filter  s sort  r refresh  ? help  q quit "
	if s.searching {
		right = " esc clear  enter done "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
