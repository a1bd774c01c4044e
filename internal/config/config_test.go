package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	require.NoError(t, err)

	assert.Equal(t, "https://dev.to/api", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.PerPage())
	assert.Equal(t, 4999*time.Millisecond, cfg.Timeout())
	assert.Equal(t, "react", cfg.DefaultTag)
	assert.Equal(t, BackendFile, cfg.CacheBackend())
	assert.Zero(t, cfg.CacheTTL(), "cache entries must not expire by default")
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "react", cfg.DefaultTag)

	_, err = os.Stat(path)
	assert.NoError(t, err, "expected defaults to be written on first run")
}

func TestLoadOverridesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: http://localhost:9999/api
  per_page: 30
default_tag: go
cache:
  dir: /tmp/articles
  backend: badger
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/api", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.PerPage())
	assert.Equal(t, 4999*time.Millisecond, cfg.Timeout(), "timeout keeps its default")
	assert.Equal(t, "go", cfg.DefaultTag)
	assert.Equal(t, "/tmp/articles", cfg.CacheDir())
	assert.Equal(t, BackendBadger, cfg.CacheBackend())
	assert.Equal(t, ":3000", cfg.ServerAddr())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad scheme", "api:\n  base_url: ftp://example.com\n"},
		{"bad per_page", "api:\n  per_page: 5000\n"},
		{"bad timeout", "api:\n  timeout: soon\n"},
		{"bad ttl", "cache:\n  ttl: abc\n"},
		{"negative ttl", "cache:\n  ttl: -1h\n"},
		{"bad backend", "cache:\n  backend: sqlite\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadValidation_PerPageMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  per_page: -1\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "between 0 and")
}

func TestLoadAcceptsDayTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: 7d\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.CacheTTL())
}

func TestCacheTTL(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"", 0},
		{"7d", 7 * 24 * time.Hour},
		{"36h", 36 * time.Hour},
		{"invalid", 0},
		{"-1h", 0},
	}
	for _, tt := range tests {
		cfg := &Config{Cache: CacheConfig{TTL: tt.input}}
		assert.Equal(t, tt.want, cfg.CacheTTL(), "CacheTTL(%q)", tt.input)
	}
}

func TestAPIKeyFallsBackToEnv(t *testing.T) {
	t.Setenv("FOREM_API_KEY", "from-env")

	cfg := &Config{}
	assert.Equal(t, "from-env", cfg.APIKey())

	cfg.API.Key = "from-file"
	assert.Equal(t, "from-file", cfg.APIKey())
}

func TestTimeoutFallback(t *testing.T) {
	cfg := &Config{API: APIConfig{Timeout: "2s"}}
	assert.Equal(t, 2*time.Second, cfg.Timeout())

	cfg.API.Timeout = "garbage"
	assert.Equal(t, 4999*time.Millisecond, cfg.Timeout())
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("30d")
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, d)

	d, err = ParseDuration("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = ParseDuration("soon")
	assert.Error(t, err)
}
