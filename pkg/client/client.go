// Package client provides a cached, retrying JSON HTTP client for MCP servers
// that wrap upstream REST APIs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/swiss-mcp/mcp-commons/pkg/cache"
	"github.com/swiss-mcp/mcp-commons/pkg/logging"
)

// Version is reported in the default User-Agent.
const Version = "1.0.0"

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "mcp-commons/" + Version

// Client is a JSON HTTP client with a TTL response cache and retries with
// exponential backoff. It must be opened before use; see Open and With.
type Client struct {
	config  Config
	store   cache.Store
	logger  zerolog.Logger
	limiter *rate.Limiter
	group   singleflight.Group

	mu         sync.RWMutex
	httpClient *http.Client
	transport  *http.Transport // owned transport, closed on Close

	// Overridable in tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is prepended to relative request URLs. Optional.
	BaseURL string

	// CacheTTL is how long a GET response is served from cache.
	CacheTTL time.Duration

	// MaxRetries is the total number of attempts per request (>= 1).
	MaxRetries int

	// Timeout bounds each attempt.
	Timeout time.Duration

	// InitialBackoff is the wait after the first failed attempt. It doubles
	// after every further attempt.
	InitialBackoff time.Duration

	// RateLimit caps outbound requests per second. 0 disables limiting.
	RateLimit float64

	// UserAgent header. Defaults to DefaultUserAgent.
	UserAgent string

	// Store holds cached responses. Defaults to a new MemoryStore.
	Store cache.Store

	// Logger receives request and cache events. Defaults to a component
	// logger derived from the global logger.
	Logger *zerolog.Logger

	// Transport is used instead of a client-owned transport. The client
	// never closes a caller-supplied transport.
	Transport http.RoundTripper

	// Deduplicate makes concurrent cache-missing GETs for one key share a
	// single upstream request.
	Deduplicate bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CacheTTL:       120 * time.Second,
		MaxRetries:     3,
		Timeout:        30 * time.Second,
		InitialBackoff: 1 * time.Second,
		UserAgent:      DefaultUserAgent,
	}
}

// New creates a client. The client is not usable until Open is called.
func New(cfg Config) (*Client, error) {
	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("max_retries must be >= 1 (got %d)", cfg.MaxRetries)
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("cache_ttl must not be negative (got %s)", cfg.CacheTTL)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}
	if cfg.InitialBackoff < 0 {
		return nil, fmt.Errorf("initial_backoff must not be negative (got %s)", cfg.InitialBackoff)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate_limit must not be negative (got %v)", cfg.RateLimit)
	}
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("base_url must be an absolute URL (got %q)", cfg.BaseURL)
		}
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	logger := logging.NewLogger("http-client")
	if cfg.Logger != nil {
		logger = logging.Component(*cfg.Logger, "http-client")
	}

	store := cfg.Store
	if store == nil {
		store = cache.NewMemoryStore()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		config:  cfg,
		store:   store,
		logger:  logger,
		limiter: limiter,
		now:     time.Now,
		sleep:   sleepContext,
	}, nil
}

// Open acquires the client's connection resources. Opening an open client
// is a no-op.
func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient != nil {
		return nil
	}

	transport := c.config.Transport
	if transport == nil {
		c.transport = http.DefaultTransport.(*http.Transport).Clone()
		transport = c.transport
	}

	c.httpClient = &http.Client{
		Timeout:   c.config.Timeout,
		Transport: transport,
	}

	c.logger.Debug().Str("base_url", c.config.BaseURL).Msg("Client opened")
	return nil
}

// Close releases the connection resources. The cache is kept, so a client
// can be reopened with its cache intact.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient == nil {
		return nil
	}
	if c.transport != nil {
		c.transport.CloseIdleConnections()
		c.transport = nil
	}
	c.httpClient = nil

	c.logger.Debug().Str("base_url", c.config.BaseURL).Msg("Client closed")
	return nil
}

// With creates and opens a client, runs fn and closes the client on every
// exit path, including panics.
func With(ctx context.Context, cfg Config, fn func(ctx context.Context, c *Client) error) error {
	c, err := New(cfg)
	if err != nil {
		return err
	}
	if err := c.Open(); err != nil {
		return err
	}
	defer c.Close()

	return fn(ctx, c)
}

// session returns the open HTTP client or ErrClientNotInitialized.
func (c *Client) session() (*http.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.httpClient == nil {
		return nil, ErrClientNotInitialized
	}
	return c.httpClient, nil
}

// Get performs a GET request and returns the JSON response body. Successful
// responses are cached for CacheTTL unless NoCache is given. The returned
// slice is the caller's own copy; the cached value is never shared.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, opts ...RequestOption) (json.RawMessage, error) {
	if _, err := c.session(); err != nil {
		return nil, err
	}
	o := buildRequestOptions(opts)

	base, err := c.absolute(rawURL)
	if err != nil {
		return nil, err
	}
	target := withParams(base, params)

	key := cache.CacheKey{URL: base, Params: params}.Hash()
	if o.useCache {
		entry, err := cache.Lookup(ctx, c.store, key, c.now(), c.config.CacheTTL)
		switch {
		case err == nil:
			c.logger.Info().Str("cache_key", cache.ShortHash(key)).Msg("Cache hit")
			return cloneRaw(entry.Value), nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("cache_key", cache.ShortHash(key)).Msg("Cache get error")
		}
	}

	fetch := func() (json.RawMessage, error) {
		value, err := c.retryWithBackoff(ctx, http.MethodGet, target, func(ctx context.Context) (json.RawMessage, error) {
			return c.do(ctx, http.MethodGet, target, nil, o.header)
		})
		if err != nil {
			return nil, err
		}

		if o.useCache {
			if err := c.store.Set(ctx, key, cache.NewEntry(value, c.now()), c.config.CacheTTL); err != nil {
				c.logger.Warn().Err(err).Str("cache_key", cache.ShortHash(key)).Msg("Failed to cache response")
			} else {
				c.logger.Info().Str("cache_key", cache.ShortHash(key)).Msg("Cache set")
			}
		}
		return value, nil
	}

	if !c.config.Deduplicate || !o.useCache {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return cloneRaw(value), nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		return fetch()
	})
	if shared {
		dedupedTotal.Inc()
	}
	if err != nil {
		return nil, err
	}
	// Every follower gets the same value from the group.
	return cloneRaw(v.(json.RawMessage)), nil
}

func cloneRaw(v json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), v...)
}

// GetJSON performs Get and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any, opts ...RequestOption) error {
	body, err := c.Get(ctx, rawURL, params, opts...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Post sends body as JSON and returns the JSON response. A nil body sends no
// content. POST responses are never cached.
func (c *Client) Post(ctx context.Context, rawURL string, body any, opts ...RequestOption) (json.RawMessage, error) {
	if _, err := c.session(); err != nil {
		return nil, err
	}
	o := buildRequestOptions(opts)

	target, err := c.absolute(rawURL)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	return c.retryWithBackoff(ctx, http.MethodPost, target, func(ctx context.Context) (json.RawMessage, error) {
		return c.do(ctx, http.MethodPost, target, payload, o.header)
	})
}

// ClearCache drops all cached responses and returns how many were dropped.
func (c *Client) ClearCache(ctx context.Context) (int, error) {
	n, err := c.store.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	c.logger.Info().Int("items", n).Msg("Cache cleared")
	return n, nil
}

// CacheLen returns the number of cached responses.
func (c *Client) CacheLen(ctx context.Context) (int, error) {
	return c.store.Len(ctx)
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// ToDict describes the client for JSON output.
func (c *Client) ToDict() map[string]any {
	size, _ := c.CacheLen(context.Background())
	return map[string]any{
		"base_url":          c.config.BaseURL,
		"cache_ttl_seconds": c.config.CacheTTL.Seconds(),
		"max_retries":       c.config.MaxRetries,
		"timeout_seconds":   c.config.Timeout.Seconds(),
		"cache_size":        size,
	}
}

// String implements fmt.Stringer.
func (c *Client) String() string {
	size, _ := c.CacheLen(context.Background())
	return fmt.Sprintf("Client(base_url=%s, cache_entries=%d)", c.config.BaseURL, size)
}

// do performs a single attempt.
func (c *Client) do(ctx context.Context, method, target string, payload []byte, header http.Header) (json.RawMessage, error) {
	httpClient, err := c.session()
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %w", ErrContextCancelled, err)
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	startTime := time.Now()
	resp, err := httpClient.Do(req)
	requestDuration.WithLabelValues(method).Observe(time.Since(startTime).Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &RequestError{
			Method:     method,
			URL:        target,
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn().
			Str("method", method).
			Str("url", target).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Upstream request error")

		return nil, &RequestError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
			Body:       truncateBody(body),
		}
	}

	entry, err := cache.ResponseToEntry(resp, c.now())
	if err != nil {
		// A body that stops mid-read is a transport failure, not bad JSON.
		if !errors.Is(err, cache.ErrInvalidEntry) {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return nil, &RequestError{
				Method:     method,
				URL:        target,
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassNetwork,
				Message:    "read response body",
				Err:        err,
			}
		}
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &RequestError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "invalid response body",
			Err:        fmt.Errorf("%w: %w", ErrInvalidJSON, err),
		}
	}

	c.logger.Info().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Msg("HTTP success")

	return entry.Value, nil
}

// absolute resolves rawURL against BaseURL when it has no scheme.
func (c *Client) absolute(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.IsAbs() {
		return rawURL, nil
	}
	if c.config.BaseURL == "" {
		return "", fmt.Errorf("relative url %q requires a base_url", rawURL)
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(rawURL, "/"), nil
}

// withParams appends params to target's query string, sorted by name.
func withParams(target string, params url.Values) string {
	if len(params) == 0 {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + params.Encode()
}
