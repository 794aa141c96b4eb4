package trending

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/happy-v587/github-trending/internal/cache"
	"github.com/happy-v587/github-trending/internal/extract"
)

const (
	DefaultBaseURL   = "https://github.com/trending"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxBodySize = 10 * 1024 * 1024
)

var (
	ErrStatus       = errors.New("unexpected status")
	ErrInvalidSince = errors.New("invalid time window")
)

// Since is the time window of a trending listing.
type Since string

const (
	Daily   Since = "daily"
	Weekly  Since = "weekly"
	Monthly Since = "monthly"
)

func ParseSince(s string) (Since, error) {
	switch Since(strings.ToLower(strings.TrimSpace(s))) {
	case "", Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	}
	return "", fmt.Errorf("%w %q (valid: daily, weekly, monthly)", ErrInvalidSince, s)
}

// Params selects one listing.
type Params struct {
	Language string
	Since    Since
	UseCache bool
}

// ClientConfig describes how the listing page is requested.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Cache is the snapshot storage consulted before and after a fetch.
type Cache interface {
	Read() ([]cache.Repository, bool)
	Write(repos []cache.Repository) error
}

// Source tells where the repositories of a Result came from.
type Source string

const (
	SourceNetwork  Source = "network"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
	SourceNone     Source = "none"
)

// Result is the outcome of one Fetch. Errors holds non-fatal problems: a
// failed request that was answered from the cache, or a snapshot that could
// not be saved.
type Result struct {
	Repos  []cache.Repository
	Source Source
	Errors []error
}

type Fetcher struct {
	cfg       ClientConfig
	client    *http.Client
	cache     Cache
	extractor *extract.Extractor
	logger    *slog.Logger
}

func New(cfg ClientConfig, store Cache, logger *slog.Logger) *Fetcher {
	def := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Fetcher{
		cfg:       cfg,
		client:    client,
		cache:     store,
		extractor: extract.New(siteRoot(cfg.BaseURL), logger),
		logger:    logger,
	}
}

// Fetch returns the trending repositories for p. It never fails: when the
// listing cannot be retrieved it falls back to any fresh snapshot, even if
// p.UseCache is false, and otherwise returns an empty result.
func (f *Fetcher) Fetch(ctx context.Context, p Params) Result {
	if p.UseCache {
		if repos, ok := f.readCache(); ok {
			f.logger.Debug("serving trending from cache", "count", len(repos))
			return Result{Repos: repos, Source: SourceCache}
		}
	}

	repos, err := f.retrieve(ctx, p)
	if err != nil {
		f.logger.Warn("trending request failed", "error", err)
		res := Result{Repos: []cache.Repository{}, Source: SourceNone, Errors: []error{err}}
		if cached, ok := f.readCache(); ok {
			res.Repos = cached
			res.Source = SourceFallback
		}
		return res
	}

	res := Result{Repos: repos, Source: SourceNetwork}
	if f.cache != nil {
		if err := f.cache.Write(repos); err != nil {
			f.logger.Warn("saving trending cache failed", "error", err)
			res.Errors = append(res.Errors, fmt.Errorf("saving cache: %w", err))
		}
	}
	return res
}

func (f *Fetcher) readCache() ([]cache.Repository, bool) {
	if f.cache == nil {
		return nil, false
	}
	return f.cache.Read()
}

// ListingURL builds the request URL for p.
func (f *Fetcher) ListingURL(p Params) string {
	q := url.Values{}
	if p.Language != "" {
		q.Set("l", p.Language)
	}
	since := p.Since
	if since == "" {
		since = Daily
	}
	q.Set("since", string(since))
	return f.cfg.BaseURL + "?" + q.Encode()
}

func (f *Fetcher) retrieve(ctx context.Context, p Params) (repos []cache.Repository, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing listing: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ListingURL(p), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching trending: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching trending: %w %d", ErrStatus, resp.StatusCode)
	}

	doc, err := extract.Parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	return f.extractor.Extract(doc), nil
}

// siteRoot strips the path from the listing URL so repository links resolve
// against the same host.
func siteRoot(listing string) string {
	u, err := url.Parse(listing)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return extract.DefaultBaseURL
	}
	return u.Scheme + "://" + u.Host
}
