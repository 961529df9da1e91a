// Package config loads the mcp-gateway configuration from defaults, an
// optional YAML file and MCP_-prefixed environment variables, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/swiss-mcp/mcp-commons/pkg/client"
	"github.com/swiss-mcp/mcp-commons/pkg/logging"
	"github.com/swiss-mcp/mcp-commons/pkg/mcperr"
	"github.com/swiss-mcp/mcp-commons/pkg/negotiation"
	"github.com/swiss-mcp/mcp-commons/pkg/serialization"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MCP_"

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config is the gateway configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" envPrefix:"SERVER_"`
	Upstream    UpstreamConfig    `yaml:"upstream" envPrefix:"UPSTREAM_"`
	Cache       CacheConfig       `yaml:"cache" envPrefix:"CACHE_"`
	Logging     LoggingConfig     `yaml:"logging" envPrefix:"LOG_"`
	Negotiation NegotiationConfig `yaml:"negotiation" envPrefix:"NEGOTIATION_"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// UpstreamConfig configures the cached client talking to the upstream API.
type UpstreamConfig struct {
	// Name identifies the API in error details.
	Name           string        `yaml:"name" env:"NAME"`
	BaseURL        string        `yaml:"base_url" env:"BASE_URL"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries     int           `yaml:"max_retries" env:"MAX_RETRIES"`
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"INITIAL_BACKOFF"`
	RateLimit      float64       `yaml:"rate_limit" env:"RATE_LIMIT"`
	UserAgent      string        `yaml:"user_agent" env:"USER_AGENT"`
	Deduplicate    bool          `yaml:"deduplicate" env:"DEDUPLICATE"`
}

// CacheConfig selects and configures the response cache.
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
	Backend       string        `yaml:"backend" env:"BACKEND"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
	KeyPrefix     string        `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Pretty bool   `yaml:"pretty" env:"PRETTY"`
}

// NegotiationConfig configures response serialization.
type NegotiationConfig struct {
	MinCompressSize int    `yaml:"min_compress_size" env:"MIN_COMPRESS_SIZE"`
	Charset         string `yaml:"charset" env:"CHARSET"`
}

// Default returns the built-in configuration.
func Default() *Config {
	clientDefaults := client.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Upstream: UpstreamConfig{
			Name:           "upstream",
			Timeout:        clientDefaults.Timeout,
			MaxRetries:     clientDefaults.MaxRetries,
			InitialBackoff: clientDefaults.InitialBackoff,
			UserAgent:      clientDefaults.UserAgent,
		},
		Cache: CacheConfig{
			TTL:       clientDefaults.CacheTTL,
			Backend:   CacheBackendMemory,
			RedisAddr: "localhost:6379",
		},
		Logging: LoggingConfig{
			Level: string(logging.LevelInfo),
		},
		Negotiation: NegotiationConfig{
			MinCompressSize: negotiation.DefaultMinCompressSize,
			Charset:         serialization.DefaultCharset,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, mcperr.Configuration(fmt.Sprintf("read configuration file: %v", err), "config", err)
		}
		if err := cfg.applyYAML(data); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, mcperr.Configuration(fmt.Sprintf("parse environment: %v", err), "env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyYAML overlays YAML data after expanding ${VAR} references.
func (c *Config) applyYAML(data []byte) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return mcperr.Configuration(fmt.Sprintf("parse YAML configuration: %v", err), "config", err)
	}
	return nil
}

// Validate checks the configuration. The returned *mcperr.Error names the
// offending key in its details. An empty upstream base URL is allowed; see
// RequireUpstream.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return invalid("server.addr", "is required")
	}
	if c.Upstream.BaseURL != "" {
		if u, err := url.Parse(c.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return invalid("upstream.base_url", "must be an absolute URL")
		}
	}
	if c.Upstream.MaxRetries < 1 {
		return invalid("upstream.max_retries", "must be >= 1")
	}
	if c.Upstream.Timeout <= 0 {
		return invalid("upstream.timeout", "must be positive")
	}
	if c.Upstream.InitialBackoff < 0 {
		return invalid("upstream.initial_backoff", "must not be negative")
	}
	if c.Upstream.RateLimit < 0 {
		return invalid("upstream.rate_limit", "must not be negative")
	}
	if c.Cache.TTL < 0 {
		return invalid("cache.ttl", "must not be negative")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr", "is required for the redis backend")
		}
	default:
		return invalid("cache.backend", fmt.Sprintf("must be %q or %q", CacheBackendMemory, CacheBackendRedis))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level", "must be debug, info, warn or error")
	}
	if c.Negotiation.MinCompressSize < 0 {
		return invalid("negotiation.min_compress_size", "must not be negative")
	}
	return nil
}

// RequireUpstream reports an error when no upstream base URL is configured.
// The gateway needs one; one-off fetches of absolute URLs do not.
func (c *Config) RequireUpstream() error {
	if c.Upstream.BaseURL == "" {
		return invalid("upstream.base_url", "is required")
	}
	return nil
}

func invalid(key, problem string) error {
	return mcperr.Configuration(key+" "+problem, key, nil)
}

// ClientConfig converts the upstream and cache settings into a client
// configuration. The cache store is left for the caller to build.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:        c.Upstream.BaseURL,
		CacheTTL:       c.Cache.TTL,
		MaxRetries:     c.Upstream.MaxRetries,
		Timeout:        c.Upstream.Timeout,
		InitialBackoff: c.Upstream.InitialBackoff,
		RateLimit:      c.Upstream.RateLimit,
		UserAgent:      c.Upstream.UserAgent,
		Deduplicate:    c.Upstream.Deduplicate,
	}
}

// LoggingConfig converts the logging settings.
func (c *Config) LoggingConfig(app, version string) logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Logging.Level)
	cfg.Pretty = c.Logging.Pretty
	cfg.App = app
	cfg.Version = version
	return cfg
}
