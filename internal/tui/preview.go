package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/happy-v587/github-trending/internal/cache"
)

func renderPreview(r *cache.Repository, width, height, scroll int) string {
	if r == nil {
		return lipglossCenter("Select a repository", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(r.Name)
	meta := previewMetaStyle.Render(r.Language) + "\n" +
		printer.Sprintf("★ %d stars  ⑂ %d forks  +%d stars in this period", r.Stars, r.Forks, r.StarsToday)

	desc := r.Description
	if desc == "" {
		desc = "(No description available)"
	}

	body := previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))
	link := previewLinkStyle.Width(contentWidth).Render(r.URL)

	content := lipgloss.JoinVertical(lipgloss.Left, title, meta, "", body, "", link)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// wrapText breaks s on spaces so no line exceeds width columns.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if runewidth.StringWidth(line)+1+runewidth.StringWidth(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
