package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/happy-v587/github-trending/internal/cache"
	"github.com/happy-v587/github-trending/internal/trending"
)

type fakeFetcher struct {
	mu     sync.Mutex
	calls  []trending.Params
	result trending.Result
}

func (f *fakeFetcher) Fetch(ctx context.Context, p trending.Params) trending.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	return f.result
}

func sampleRepos() []cache.Repository {
	return []cache.Repository{
		{Rank: 1, Name: "acme/rocket", Description: "Launch tooling", Language: "Go", StarsToday: 10, URL: "https://github.com/acme/rocket"},
		{Rank: 2, Name: "foo/bar", Description: "A parser", Language: "Rust", StarsToday: 300, URL: "https://github.com/foo/bar"},
		{Rank: 3, Name: "baz/qux", Description: "Rocket science notes", Language: "Go", StarsToday: 50, URL: "https://github.com/baz/qux"},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and any batched commands, collecting their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func loadedApp(t *testing.T) (*App, *fakeFetcher) {
	t.Helper()
	f := &fakeFetcher{result: trending.Result{Repos: sampleRepos(), Source: trending.SourceNetwork}}
	app := NewApp(RunOpts{Fetcher: f, Params: trending.Params{Since: trending.Daily, UseCache: true}})
	for _, msg := range runCmd(app.Init()) {
		if m, ok := msg.(reposLoadedMsg); ok {
			app.Update(m)
		}
	}
	return app, f
}

func names(repos []cache.Repository) []string {
	var out []string
	for _, r := range repos {
		out = append(out, r.Name)
	}
	return out
}

func TestInitFetchesWithParams(t *testing.T) {
	app, f := loadedApp(t)
	if len(f.calls) != 1 || !f.calls[0].UseCache {
		t.Fatalf("expected one cached fetch, got %+v", f.calls)
	}
	if len(app.repos) != 3 || app.refreshing {
		t.Errorf("expected 3 repos loaded, got %d (refreshing=%v)", len(app.repos), app.refreshing)
	}
	if app.source != trending.SourceNetwork {
		t.Errorf("unexpected source %q", app.source)
	}
}

func TestSortToggle(t *testing.T) {
	app, _ := loadedApp(t)

	app.Update(key("s"))
	if got := names(app.repos); got[0] != "foo/bar" || got[1] != "baz/qux" {
		t.Errorf("expected stars gained order, got %v", got)
	}
	app.Update(key("s"))
	if got := names(app.repos); got[0] != "acme/rocket" {
		t.Errorf("expected rank order restored, got %v", got)
	}
}

func TestSearchFiltersNameAndDescription(t *testing.T) {
	app, _ := loadedApp(t)

	app.Update(key("/"))
	if app.mode != modeSearch {
		t.Fatal("expected search mode")
	}
	for _, r := range "rocket" {
		app.Update(key(string(r)))
	}
	if got := names(app.repos); len(got) != 2 || got[0] != "acme/rocket" || got[1] != "baz/qux" {
		t.Errorf("unexpected search result %v", got)
	}

	app.Update(key("esc"))
	if len(app.repos) != 3 || app.mode != modeNormal {
		t.Errorf("expected search cleared, got %d repos", len(app.repos))
	}
}

func TestLanguageFilter(t *testing.T) {
	app, _ := loadedApp(t)

	app.Update(key("f"))
	app.Update(key("2")) // Rust, after Go
	if got := names(app.repos); len(got) != 1 || got[0] != "foo/bar" {
		t.Errorf("expected only Rust repos, got %v", got)
	}
	app.Update(key("esc"))
	if app.mode != modeNormal || app.filterBar.filterMode {
		t.Error("expected filter mode closed")
	}
}

func TestRefreshSkipsCache(t *testing.T) {
	app, f := loadedApp(t)

	_, cmd := app.Update(key("r"))
	if !app.refreshing {
		t.Fatal("expected refreshing state")
	}
	// A second press while fetching is ignored.
	if _, again := app.Update(key("r")); again != nil {
		t.Error("expected no second fetch while one is running")
	}
	for _, msg := range runCmd(cmd) {
		if m, ok := msg.(reposLoadedMsg); ok {
			app.Update(m)
		}
	}
	if len(f.calls) != 2 || f.calls[1].UseCache {
		t.Errorf("expected a second fetch without cache, got %+v", f.calls)
	}
	if app.refreshing {
		t.Error("expected refresh to finish")
	}
}

func TestFailedRefreshKeepsListing(t *testing.T) {
	app, _ := loadedApp(t)

	app.Update(reposLoadedMsg{result: trending.Result{
		Repos:  []cache.Repository{},
		Source: trending.SourceNone,
		Errors: []error{errors.New("boom")},
	}})
	if len(app.repos) != 3 {
		t.Errorf("expected previous listing kept, got %d", len(app.repos))
	}
	if len(app.warnings) != 1 {
		t.Error("expected warning recorded")
	}
}

func TestOpenSelected(t *testing.T) {
	app, _ := loadedApp(t)
	var opened string
	app.open = func(u string) error { opened = u; return nil }

	app.Update(key("j"))
	_, cmd := app.Update(key("o"))
	runCmd(cmd)
	if opened != "https://github.com/foo/bar" {
		t.Errorf("opened %q", opened)
	}

	app.open = func(string) error { return errors.New("no browser") }
	_, cmd = app.Update(key("o"))
	for _, msg := range runCmd(cmd) {
		app.Update(msg)
	}
	if app.err == nil {
		t.Error("expected open error surfaced")
	}
}

func TestCursorBounds(t *testing.T) {
	app, _ := loadedApp(t)
	app.Update(key("k"))
	if app.cursor != 0 {
		t.Errorf("cursor moved above top: %d", app.cursor)
	}
	for i := 0; i < 5; i++ {
		app.Update(key("j"))
	}
	if app.cursor != 2 {
		t.Errorf("cursor should stop at last item, got %d", app.cursor)
	}
}

func TestViewRenders(t *testing.T) {
	app, _ := loadedApp(t)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if out := app.View(); out == "" {
		t.Error("expected non-empty view")
	}
	app.Update(key("?"))
	if app.mode != modeHelp || app.View() == "" {
		t.Error("expected help view")
	}
}
