package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type HistoryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path,omitempty"`
	Retention string `yaml:"retention,omitempty"`
}

type Config struct {
	BaseURL              string        `yaml:"base_url"`
	CacheFile            string        `yaml:"cache_file"`
	CacheTimeout         string        `yaml:"cache_timeout"`
	RequestTimeout       string        `yaml:"request_timeout"`
	UserAgent            string        `yaml:"user_agent"`
	DefaultLimit         int           `yaml:"default_limit"`
	MaxDescriptionLength int           `yaml:"max_description_length"`
	Languages            []string      `yaml:"languages,omitempty"`
	History              HistoryConfig `yaml:"history"`
}

func (c *Config) CacheTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTimeout)
	if err != nil || d < 0 {
		return time.Hour
	}
	return d
}

func (c *Config) RequestTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func (c *Config) HistoryRetention() time.Duration {
	d, err := ParseDays(c.History.Retention)
	if err != nil || d <= 0 {
		return 90 * 24 * time.Hour
	}
	return d
}

// HistoryPath returns the sqlite archive location, defaulting to the XDG
// data directory.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(xdg.DataHome, "ghtrending", "history.db")
}

// ParseDays accepts Go durations plus an "Nd" day suffix.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "ghtrending", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: seed the file, but a read-only home is fine too.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaults(&cfg, defaults)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// mergeDefaults fills fields the user file left empty.
func mergeDefaults(cfg, defaults *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.CacheFile == "" {
		cfg.CacheFile = defaults.CacheFile
	}
	if cfg.CacheTimeout == "" {
		cfg.CacheTimeout = defaults.CacheTimeout
	}
	if cfg.RequestTimeout == "" {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.DefaultLimit == 0 {
		cfg.DefaultLimit = defaults.DefaultLimit
	}
	if cfg.MaxDescriptionLength == 0 {
		cfg.MaxDescriptionLength = defaults.MaxDescriptionLength
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = defaults.Languages
	}
	if cfg.History.Retention == "" {
		cfg.History.Retention = defaults.History.Retention
	}
}

func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url: missing host")
	}
	if _, err := time.ParseDuration(cfg.CacheTimeout); err != nil {
		return fmt.Errorf("cache_timeout: %w", err)
	}
	if d, err := time.ParseDuration(cfg.RequestTimeout); err != nil || d <= 0 {
		return fmt.Errorf("request_timeout: must be a positive duration, got %q", cfg.RequestTimeout)
	}
	if cfg.DefaultLimit < 0 {
		return fmt.Errorf("default_limit: must not be negative")
	}
	if cfg.MaxDescriptionLength < 0 {
		return fmt.Errorf("max_description_length: must not be negative")
	}
	if cfg.History.Retention != "" {
		if _, err := ParseDays(cfg.History.Retention); err != nil {
			return fmt.Errorf("history.retention: %w", err)
		}
	}
	return nil
}
