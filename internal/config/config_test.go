package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if cfg.BaseURL != "https://github.com/trending" {
		t.Errorf("unexpected base_url %q", cfg.BaseURL)
	}
	if cfg.CacheFile != ".github_trending_cache.json" {
		t.Errorf("unexpected cache_file %q", cfg.CacheFile)
	}
	if cfg.DefaultLimit != 10 || cfg.MaxDescriptionLength != 100 {
		t.Errorf("unexpected limits: %d/%d", cfg.DefaultLimit, cfg.MaxDescriptionLength)
	}
	if len(cfg.Languages) == 0 {
		t.Error("expected default language list")
	}
	if cfg.History.Enabled {
		t.Error("history should be off by default")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("embedded defaults should validate: %v", err)
	}
}

func TestCacheTimeoutDuration(t *testing.T) {
	cfg := &Config{CacheTimeout: "30m"}
	if d := cfg.CacheTimeoutDuration(); d != 30*time.Minute {
		t.Errorf("expected 30m, got %v", d)
	}

	cfg.CacheTimeout = "invalid"
	if d := cfg.CacheTimeoutDuration(); d != time.Hour {
		t.Errorf("expected 1h default for invalid timeout, got %v", d)
	}
}

func TestRequestTimeoutDuration(t *testing.T) {
	cfg := &Config{RequestTimeout: "3s"}
	if d := cfg.RequestTimeoutDuration(); d != 3*time.Second {
		t.Errorf("expected 3s, got %v", d)
	}
	cfg.RequestTimeout = "0s"
	if d := cfg.RequestTimeoutDuration(); d != 10*time.Second {
		t.Errorf("expected 10s default for zero timeout, got %v", d)
	}
}

func TestHistoryRetention(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"90d", 90},
		{"30d", 30},
		{"720h", 30},
		{"", 90},
		{"invalid", 90},
	}
	for _, tt := range tests {
		cfg := &Config{History: HistoryConfig{Retention: tt.input}}
		got := cfg.HistoryRetention()
		if got != time.Duration(tt.wantDays)*24*time.Hour {
			t.Errorf("HistoryRetention(%q) = %v, want %dd", tt.input, got, tt.wantDays)
		}
	}
}

func TestHistoryPath(t *testing.T) {
	cfg := &Config{}
	if !strings.HasSuffix(cfg.HistoryPath(), filepath.Join("ghtrending", "history.db")) {
		t.Errorf("unexpected default history path %q", cfg.HistoryPath())
	}
	cfg.History.Path = "/tmp/h.db"
	if cfg.HistoryPath() != "/tmp/h.db" {
		t.Errorf("expected configured path, got %q", cfg.HistoryPath())
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `cache_timeout: 15m
default_limit: 25
history:
  enabled: true
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheTimeoutDuration() != 15*time.Minute {
		t.Errorf("expected 15m, got %s", cfg.CacheTimeout)
	}
	if cfg.DefaultLimit != 25 {
		t.Errorf("expected limit 25, got %d", cfg.DefaultLimit)
	}
	if !cfg.History.Enabled {
		t.Error("expected history enabled")
	}
	// Unset keys come from the embedded defaults.
	if cfg.BaseURL != "https://github.com/trending" || cfg.MaxDescriptionLength != 100 {
		t.Errorf("defaults not merged: %+v", cfg)
	}
	if cfg.History.Retention != "90d" {
		t.Errorf("expected default retention, got %q", cfg.History.Retention)
	}
}

func TestLoadNonexistentWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLimit != 10 {
		t.Errorf("expected defaults when config doesn't exist, got %+v", cfg)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults to be written on first run: %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(cfgPath, []byte("default_limit: [oops"), 0o644)
	if _, err := Load(cfgPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(cfgPath, []byte("base_url: file:///etc/passwd\n"), 0o644)
	if _, err := Load(cfgPath); err == nil {
		t.Error("expected validation error for file:// base_url")
	}
}

func validConfig() *Config {
	return &Config{
		BaseURL:        "https://github.com/trending",
		CacheTimeout:   "1h",
		RequestTimeout: "10s",
	}
}

func TestValidateAcceptsHTTP(t *testing.T) {
	cfg := validConfig()
	cfg.BaseURL = "http://localhost:8080/trending"
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error for http URL: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(*Config){
		"scheme":          func(c *Config) { c.BaseURL = "ftp://github.com" },
		"host":            func(c *Config) { c.BaseURL = "https://" },
		"cache timeout":   func(c *Config) { c.CacheTimeout = "soon" },
		"request timeout": func(c *Config) { c.RequestTimeout = "0s" },
		"limit":           func(c *Config) { c.DefaultLimit = -1 },
		"description":     func(c *Config) { c.MaxDescriptionLength = -5 },
		"retention":       func(c *Config) { c.History.Retention = "forever" },
	}
	for name, mutate := range tests {
		cfg := validConfig()
		mutate(cfg)
		if err := Validate(cfg); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDays(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("ParseDays(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDays(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
}
