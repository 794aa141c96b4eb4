package report

import (
	"sort"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/happy-v587/github-trending/internal/cache"
)

// SortByStarsToday returns a copy of repos ordered by stars gained in the
// window, highest first. Ties keep their input order.
func SortByStarsToday(repos []cache.Repository) []cache.Repository {
	out := make([]cache.Repository, len(repos))
	copy(out, repos)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StarsToday > out[j].StarsToday
	})
	return out
}

// Limit returns at most n repos. n <= 0 means no limit.
func Limit(repos []cache.Repository, n int) []cache.Repository {
	if n <= 0 || n >= len(repos) {
		return repos
	}
	return repos[:n]
}

type LanguageCount struct {
	Language string
	Count    int
}

// LanguageCounts tallies languages, most common first, returning at most top
// entries (all when top <= 0). Equal counts keep first-seen order.
func LanguageCounts(repos []cache.Repository, top int) []LanguageCount {
	index := make(map[string]int)
	var counts []LanguageCount
	for _, r := range repos {
		i, ok := index[r.Language]
		if !ok {
			i = len(counts)
			index[r.Language] = i
			counts = append(counts, LanguageCount{Language: r.Language})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if top > 0 && len(counts) > top {
		counts = counts[:top]
	}
	return counts
}

// Hottest returns the first repository with the most stars gained.
func Hottest(repos []cache.Repository) (cache.Repository, bool) {
	if len(repos) == 0 {
		return cache.Repository{}, false
	}
	best := repos[0]
	for _, r := range repos[1:] {
		if r.StarsToday > best.StarsToday {
			best = r
		}
	}
	return best, true
}

var printer = message.NewPrinter(language.English)

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// truncate shortens s to width terminal cells and marks the cut with "...".
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "") + "..."
}
