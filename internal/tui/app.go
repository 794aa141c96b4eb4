package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/happy-v587/github-trending/internal/browser"
	"github.com/happy-v587/github-trending/internal/cache"
	"github.com/happy-v587/github-trending/internal/report"
	"github.com/happy-v587/github-trending/internal/trending"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilter
	modeHelp
)

// Fetcher loads one trending listing.
type Fetcher interface {
	Fetch(ctx context.Context, p trending.Params) trending.Result
}

type App struct {
	fetcher Fetcher
	params  trending.Params
	timeout time.Duration

	all    []cache.Repository
	repos  []cache.Repository
	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	filterBar   filterBar

	byGain        bool
	refreshing    bool
	previewScroll int
	source        trending.Source
	fetchedAt     time.Time
	warnings      []error
	err           error
	open          func(string) error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Fetcher Fetcher
	Params  trending.Params
	// Timeout bounds each fetch started from the UI.
	Timeout time.Duration
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search name or description..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = trending.DefaultTimeout
	}

	return &App{
		fetcher:     opts.Fetcher,
		params:      opts.Params,
		timeout:     timeout,
		filterBar:   newFilterBar(),
		searchInput: ti,
		spinner:     sp,
		open:        browser.Open,
	}
}

func (a *App) Init() tea.Cmd {
	a.refreshing = true
	return tea.Batch(a.fetchCmd(a.params), a.spinner.Tick)
}

// fetchCmd captures the params into the closure; one fetch runs at a time.
func (a *App) fetchCmd(p trending.Params) tea.Cmd {
	f := a.fetcher
	timeout := a.timeout
	return func() tea.Msg {
		// The fetcher applies its own request timeout; this only guards the UI.
		ctx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
		defer cancel()
		return reposLoadedMsg{result: f.Fetch(ctx, p)}
	}
}

func (a *App) openBrowserCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

// applyView recomputes the visible repositories from the fetched listing.
func (a *App) applyView() {
	a.repos = visibleRepos(a.all, a.filterBar.allows, a.searchInput.Value(), a.byGain)
	if a.cursor >= len(a.repos) {
		a.cursor = max(0, len(a.repos)-1)
	}
}

// visibleRepos filters by language and a case-insensitive substring of name
// or description, then orders by rank or by stars gained.
func visibleRepos(all []cache.Repository, allow func(string) bool, query string, byGain bool) []cache.Repository {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]cache.Repository, 0, len(all))
	for _, r := range all {
		if !allow(r.Language) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) {
			continue
		}
		out = append(out, r)
	}
	if byGain {
		return report.SortByStarsToday(out)
	}
	return out
}

func (a *App) selected() *cache.Repository {
	if len(a.repos) > 0 && a.cursor < len(a.repos) {
		return &a.repos[a.cursor]
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case reposLoadedMsg:
		a.refreshing = false
		a.source = msg.result.Source
		a.warnings = msg.result.Errors
		if len(msg.result.Repos) > 0 || msg.result.Source != trending.SourceNone {
			a.all = msg.result.Repos
			a.fetchedAt = time.Now()
			if len(a.all) > 0 && !a.all[0].Timestamp.IsZero() {
				a.fetchedAt = a.all[0].Timestamp
			}
		}
		a.filterBar.setLanguages(a.all)
		a.applyView()
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.repos)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "g", "home":
		a.cursor = 0
		return a, nil
	case "G", "end":
		a.cursor = max(0, len(a.repos)-1)
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if r := a.selected(); r != nil {
			return a, a.openBrowserCmd(r.URL)
		}
		return a, nil
	case "s":
		a.byGain = !a.byGain
		a.cursor = 0
		a.applyView()
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "r":
		if !a.refreshing {
			a.refreshing = true
			p := a.params
			p.UseCache = false
			return a, tea.Batch(a.fetchCmd(p), a.spinner.Tick)
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.applyView()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	before := a.searchInput.Value()
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.searchInput.Value() != before {
		a.cursor = 0
		a.applyView()
	}
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		if a.filterBar.filterCursor > 0 {
			a.filterBar.filterCursor--
		}
		return a, nil
	case "right", "l":
		if a.filterBar.filterCursor < len(a.filterBar.languages)-1 {
			a.filterBar.filterCursor++
		}
		return a, nil
	case " ", "enter":
		a.filterBar.toggleCurrent()
		a.cursor = 0
		a.applyView()
		return a, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(a.filterBar.languages) {
			a.filterBar.toggle(a.filterBar.languages[idx])
			a.cursor = 0
			a.applyView()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) title() string {
	t := "GitHub Trending"
	if a.params.Language != "" {
		t += " · " + a.params.Language
	}
	since := a.params.Since
	if since == "" {
		since = trending.Daily
	}
	return t + " · " + string(since)
}

func (a *App) sortLabel() string {
	if a.byGain {
		return "by stars gained"
	}
	return "by rank"
}

func (a *App) sourceLabel() string {
	switch a.source {
	case trending.SourceNetwork:
		return "live"
	case trending.SourceCache:
		return "cached " + relativeTime(a.fetchedAt)
	case trending.SourceFallback:
		return "offline, cached " + relativeTime(a.fetchedAt)
	case trending.SourceNone:
		return "unavailable"
	}
	return ""
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  ghtrending")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1

	if contentHeight < 3 {
		contentHeight = 3
	}

	headerLeft := headerStyle.Render(a.title())
	headerRight := headerMetaStyle.Render(time.Now().Format("Jan 2 15:04"))
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := a.filterBar.render(a.width)
	if a.mode == modeSearch || a.searchInput.Value() != "" {
		filter = a.searchInput.View()
	}

	innerListW := listWidth - 4
	listContent := renderList(a.repos, a.cursor, contentHeight, innerListW)
	listStyle := paneStyle
	if a.focus == focusList {
		listStyle = paneActiveStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(a.selected(), innerPreviewW, contentHeight, a.previewScroll)
	previewStyle := paneStyle
	if a.focus == focusPreview {
		previewStyle = paneActiveStyle
	}
	previewPane := previewStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(statusInfo{
		shown:       len(a.repos),
		total:       len(a.all),
		filterLabel: a.filterBar.activeLabel(),
		sortLabel:   a.sortLabel(),
		source:      a.sourceLabel(),
		searching:   a.mode == modeSearch,
		refreshing:  a.refreshing,
	}, a.width)

	if a.refreshing {
		status = a.spinner.View() + " " + status
	}
	switch {
	case a.err != nil:
		status = statusWarnStyle.Render(a.err.Error())
	case len(a.warnings) > 0 && !a.refreshing:
		status = statusWarnStyle.Render(truncateStr("[warn] "+a.warnings[0].Error(), a.width))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("ghtrending")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through repositories\n" +
		"  g/G           Jump to first/last\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open repository in browser\n" +
		"  s             Toggle rank / stars gained ordering\n" +
		"  r             Fetch again, skipping the cache\n" +
		"  /             Search name and description\n" +
		"  f             Language filter mode\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  ←/→, h/l     Move between languages\n" +
		"  space/enter   Toggle language\n" +
		"  1-9           Toggle language by number\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
