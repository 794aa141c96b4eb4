package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/happy-v587/github-trending/internal/cache"
)

// DefaultBaseURL prefixes repository links found on the listing page.
const DefaultBaseURL = "https://github.com"

// UnknownLanguage is used when an entry carries no language label.
const UnknownLanguage = "Unknown"

// ErrMalformedEntry marks a listing entry that cannot be turned into a
// repository. Such entries are dropped.
var ErrMalformedEntry = errors.New("malformed entry")

// Extractor turns a trending listing document into repositories.
type Extractor struct {
	baseURL string
	now     func() time.Time
	logger  *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Extractor {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		logger:  logger,
	}
}

// Extract reads every entry of doc in document order. Entries without a
// title link, or that fail unexpectedly, are skipped; ranks are assigned to
// the survivors as 1..N.
func (e *Extractor) Extract(doc Node) []cache.Repository {
	entries := doc.FindAll("article", HasClass("Box-row"))
	repos := make([]cache.Repository, 0, len(entries))
	for i, entry := range entries {
		repo, err := e.entry(entry)
		if err != nil {
			e.logger.Warn("skipping trending entry", "index", i, "error", err)
			continue
		}
		repo.Rank = len(repos) + 1
		repos = append(repos, repo)
	}
	return repos
}

func (e *Extractor) entry(n Node) (repo cache.Repository, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedEntry, r)
		}
	}()

	title, ok := n.FindFirst("h2", HasClass("h3"))
	if !ok {
		return repo, fmt.Errorf("%w: no title", ErrMalformedEntry)
	}
	link, ok := title.FindFirst("a")
	if !ok {
		return repo, fmt.Errorf("%w: no title link", ErrMalformedEntry)
	}
	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	name := strings.Trim(href, "/")
	if name == "" {
		return repo, fmt.Errorf("%w: empty title link", ErrMalformedEntry)
	}

	starsToday := textOr(n, "0", "span", HasClass("d-inline-block", "float-sm-right"))

	return cache.Repository{
		Name:        name,
		URL:         e.baseURL + "/" + name,
		Description: textOr(n, "", "p", HasClass("col-9")),
		Language:    textOr(n, UnknownLanguage, "span", Equals("itemprop", "programmingLanguage")),
		Stars:       ParseMagnitude(textOr(n, "0", "a", HasSuffix("href", "/stargazers"))),
		StarsToday:  ParseMagnitude(firstToken(starsToday)),
		Forks:       ParseMagnitude(textOr(n, "0", "a", HasSuffix("href", "/forks"))),
		Timestamp:   e.now(),
	}, nil
}

// textOr returns the trimmed text of the first matching descendant, or def
// when there is none or its text is blank.
func textOr(n Node, def, tag string, attrs ...Attr) string {
	el, ok := n.FindFirst(tag, attrs...)
	if !ok {
		return def
	}
	text := strings.Join(strings.Fields(el.Text()), " ")
	if text == "" {
		return def
	}
	return text
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
