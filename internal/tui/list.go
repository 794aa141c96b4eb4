package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/happy-v587/github-trending/internal/cache"
)

var printer = message.NewPrinter(language.English)

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func renderListItem(r cache.Repository, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	label := fmt.Sprintf("%d. %s", r.Rank, r.Name)
	var name string
	if selected {
		name = itemSelectedStyle.Render("> " + truncateStr(label, width-2))
	} else {
		name = itemNameStyle.Render("  " + truncateStr(label, width-2))
	}

	meta := "  " + itemLangStyle.Render(r.Language) +
		itemDimStyle.Render(" · ") +
		itemStarsStyle.Render(printer.Sprintf("★ %d", r.Stars)) +
		itemDimStyle.Render(printer.Sprintf(" · +%d", r.StarsToday))

	return name + "\n" + meta
}

// truncateStr cuts s to n terminal columns, marking the cut with "...".
func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= n {
		return s
	}
	if n <= 3 {
		return runewidth.Truncate(s, n, "")
	}
	return runewidth.Truncate(s, n, "...")
}

func renderList(repos []cache.Repository, cursor int, height int, width int) string {
	if len(repos) == 0 {
		return lipglossCenter("No repositories", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(repos) {
		end = len(repos)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(repos[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - runewidth.StringWidth(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
