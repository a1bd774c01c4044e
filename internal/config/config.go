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

const (
	appName = "forem-reader"

	BackendFile   = "file"
	BackendBadger = "badger"

	defaultTimeout = 4999 * time.Millisecond
	defaultPerPage = 15
	maxPerPage     = 1000
)

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	PerPage int    `yaml:"per_page"`
	Timeout string `yaml:"timeout"`
	Key     string `yaml:"key,omitempty"`
}

type CacheConfig struct {
	Dir     string `yaml:"dir,omitempty"`
	Backend string `yaml:"backend"`
	TTL     string `yaml:"ttl,omitempty"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	API        APIConfig    `yaml:"api"`
	DefaultTag string       `yaml:"default_tag"`
	Cache      CacheConfig  `yaml:"cache"`
	Redis      RedisConfig  `yaml:"redis"`
	Server     ServerConfig `yaml:"server"`
}

// APIKey returns the configured key, falling back to FOREM_API_KEY.
func (c *Config) APIKey() string {
	if c.API.Key != "" {
		return c.API.Key
	}
	return os.Getenv("FOREM_API_KEY")
}

// Timeout is the per-call bound for the remote API.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

func (c *Config) PerPage() int {
	if c.API.PerPage <= 0 {
		return defaultPerPage
	}
	return c.API.PerPage
}

// CacheTTL returns 0 unless an expiry was configured explicitly.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTL == "" {
		return 0
	}
	d, err := ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ParseDuration accepts time.ParseDuration syntax plus whole days ("30d").
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return DefaultCacheDir()
}

func (c *Config) CacheBackend() string {
	if c.Cache.Backend == "" {
		return BackendFile
	}
	return c.Cache.Backend
}

func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return ":3000"
	}
	return c.Server.Addr
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, appName, "articles")
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

// Load reads the config file at path (or the default location). Values
// missing from the file keep their embedded defaults. A missing file is
// created from the defaults on first run.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.API.PerPage < 0 || cfg.API.PerPage > maxPerPage {
		return fmt.Errorf("api.per_page: must be between 0 and %d (0 uses the default), got %d", maxPerPage, cfg.API.PerPage)
	}
	if cfg.API.Timeout != "" {
		if _, err := time.ParseDuration(cfg.API.Timeout); err != nil {
			return fmt.Errorf("api.timeout: %w", err)
		}
	}
	if cfg.Cache.TTL != "" {
		d, err := ParseDuration(cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("cache.ttl: must not be negative, got %s", cfg.Cache.TTL)
		}
	}
	switch cfg.CacheBackend() {
	case BackendFile, BackendBadger:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (valid: file, badger)", cfg.Cache.Backend)
	}
	return nil
}
