package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiss-mcp/mcp-commons/pkg/logging"
	"github.com/swiss-mcp/mcp-commons/pkg/mcperr"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 120*time.Second, cfg.Cache.TTL)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 3, cfg.Upstream.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, time.Second, cfg.Upstream.InitialBackoff)
	assert.Equal(t, 1024, cfg.Negotiation.MinCompressSize)
	assert.Equal(t, "utf-8", cfg.Negotiation.Charset)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("MCP_UPSTREAM_BASE_URL", "https://transport.opendata.ch")
	t.Setenv("MCP_CACHE_TTL", "5m")
	t.Setenv("MCP_UPSTREAM_MAX_RETRIES", "5")
	t.Setenv("MCP_LOG_PRETTY", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://transport.opendata.ch", cfg.Upstream.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.Upstream.MaxRetries)
	assert.True(t, cfg.Logging.Pretty)
}

func TestLoad_YAMLWithExpansion(t *testing.T) {
	t.Setenv("SWISS_API_HOST", "api.example.ch")

	path := writeFile(t, `
server:
  addr: ":9090"
upstream:
  name: meteoswiss
  base_url: "https://${SWISS_API_HOST}/v1"
  timeout: 10s
  rate_limit: 5
cache:
  ttl: 90s
  backend: redis
  redis_addr: "redis:6379"
negotiation:
  min_compress_size: 2048
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "meteoswiss", cfg.Upstream.Name)
	assert.Equal(t, "https://api.example.ch/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 5.0, cfg.Upstream.RateLimit)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 2048, cfg.Negotiation.MinCompressSize)

	// Unset keys keep their defaults
	assert.Equal(t, 3, cfg.Upstream.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, `
upstream:
  base_url: "https://file.example.ch"
  max_retries: 2
`)
	t.Setenv("MCP_UPSTREAM_MAX_RETRIES", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.ch", cfg.Upstream.BaseURL)
	assert.Equal(t, 7, cfg.Upstream.MaxRetries)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)

		e, ok := mcperr.As(err)
		require.True(t, ok)
		assert.Equal(t, mcperr.CodeConfiguration, e.Code)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "upstream: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse YAML")
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("MCP_UPSTREAM_BASE_URL", "https://api.example.ch")
		t.Setenv("MCP_UPSTREAM_MAX_RETRIES", "many")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse environment")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantKey string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty base url", func(c *Config) { c.Upstream.BaseURL = "" }, ""},
		{"relative base url", func(c *Config) { c.Upstream.BaseURL = "/v1" }, "upstream.base_url"},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"zero retries", func(c *Config) { c.Upstream.MaxRetries = 0 }, "upstream.max_retries"},
		{"zero timeout", func(c *Config) { c.Upstream.Timeout = 0 }, "upstream.timeout"},
		{"negative backoff", func(c *Config) { c.Upstream.InitialBackoff = -1 }, "upstream.initial_backoff"},
		{"negative rate", func(c *Config) { c.Upstream.RateLimit = -1 }, "upstream.rate_limit"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheBackendRedis; c.Cache.RedisAddr = "" }, "cache.redis_addr"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"negative compress size", func(c *Config) { c.Negotiation.MinCompressSize = -1 }, "negotiation.min_compress_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Upstream.BaseURL = "https://api.example.ch"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}

			e, ok := mcperr.As(err)
			require.True(t, ok, "want *mcperr.Error, got %T", err)
			assert.Equal(t, tt.wantKey, e.Details["config_key"])
		})
	}
}

func TestRequireUpstream(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	e, ok := mcperr.As(cfg.RequireUpstream())
	require.True(t, ok)
	assert.Equal(t, "upstream.base_url", e.Details["config_key"])

	cfg.Upstream.BaseURL = "https://api.example.ch"
	assert.NoError(t, cfg.RequireUpstream())
}

func TestClientConfig(t *testing.T) {
	cfg := Default()
	cfg.Upstream.BaseURL = "https://api.example.ch"
	cfg.Upstream.Deduplicate = true
	cfg.Cache.TTL = time.Minute

	cc := cfg.ClientConfig()
	assert.Equal(t, "https://api.example.ch", cc.BaseURL)
	assert.Equal(t, time.Minute, cc.CacheTTL)
	assert.Equal(t, 3, cc.MaxRetries)
	assert.True(t, cc.Deduplicate)
	assert.Nil(t, cc.Store)
}

func TestLoggingConfig(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "debug"

	lc := cfg.LoggingConfig("mcp-gateway", "1.2.3")
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "mcp-gateway", lc.App)
	assert.Equal(t, "1.2.3", lc.Version)
	assert.NotNil(t, lc.Output)
}
