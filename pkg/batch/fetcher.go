package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/swiss-mcp/mcp-commons/pkg/client"
	"github.com/swiss-mcp/mcp-commons/pkg/logging"
)

// progressEvery controls how often progress is logged.
const progressEvery = 50

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests
	MaxConcurrency int

	// Timeout bounds each request including its retries. 0 means no bound
	// beyond the caller's context.
	Timeout time.Duration

	// Logger receives progress events. Defaults to a component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		Timeout:        2 * time.Minute,
	}
}

// Getter is the part of client.Client the fetcher needs.
type Getter interface {
	Get(ctx context.Context, rawURL string, params url.Values, opts ...client.RequestOption) (json.RawMessage, error)
}

// Request is one GET in a batch.
type Request struct {
	URL    string
	Params url.Values
}

// Result is the outcome of one Request.
type Result struct {
	Index   int
	Request Request
	Body    json.RawMessage
	Err     error
}

// Results holds one Result per Request, in request order.
type Results []Result

// Err joins the errors of all failed requests, or returns nil.
func (rs Results) Err() error {
	var errs []error
	for _, r := range rs {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("request %d (%s): %w", r.Index, r.Request.URL, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Succeeded returns the number of requests without error.
func (rs Results) Succeeded() int {
	n := 0
	for _, r := range rs {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Fetcher runs batches of GET requests.
type Fetcher struct {
	getter Getter
	config Config
	logger zerolog.Logger
}

// NewFetcher creates a batch fetcher.
func NewFetcher(getter Getter, config Config) *Fetcher {
	if getter == nil {
		panic("getter cannot be nil")
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}

	logger := logging.NewLogger("batch")
	if config.Logger != nil {
		logger = logging.Component(*config.Logger, "batch")
	}

	return &Fetcher{
		getter: getter,
		config: config,
		logger: logger,
	}
}

// FetchAll performs every request and returns the results in request order.
// A failing request does not stop the others; its error is kept in its
// Result. The returned error is non-nil only when ctx ends before the batch
// completes.
func (f *Fetcher) FetchAll(ctx context.Context, reqs []Request, opts ...client.RequestOption) (Results, error) {
	start := time.Now()
	results := make(Results, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}

	f.logger.Info().
		Int("items", len(reqs)).
		Int("max_concurrency", f.config.MaxConcurrency).
		Msg("Starting batch fetch")

	g := new(errgroup.Group)
	g.SetLimit(f.config.MaxConcurrency)

	done := make(chan struct{}, len(reqs))
	for i, req := range reqs {
		i, req := i, req
		results[i] = Result{Index: i, Request: req}
		if ctx.Err() != nil {
			results[i].Err = ctx.Err()
			continue
		}

		g.Go(func() error {
			defer func() { done <- struct{}{} }()

			reqCtx := ctx
			if f.config.Timeout > 0 {
				var cancel context.CancelFunc
				reqCtx, cancel = context.WithTimeout(ctx, f.config.Timeout)
				defer cancel()
			}

			body, err := f.getter.Get(reqCtx, req.URL, req.Params, opts...)
			if err != nil {
				f.logger.Warn().
					Err(err).
					Int("index", i).
					Str("url", req.URL).
					Msg("Batch request failed")
			}
			results[i].Body = body
			results[i].Err = err
			return nil
		})
	}

	go func() {
		finished := 0
		for range done {
			finished++
			if finished%progressEvery == 0 {
				f.logger.Info().
					Int("fetched", finished).
					Int("total", len(reqs)).
					Float64("progress_pct", float64(finished)/float64(len(reqs))*100).
					Msg("Fetch progress")
			}
		}
	}()

	_ = g.Wait()
	close(done)

	f.logger.Info().
		Int("items", len(reqs)).
		Int("succeeded", results.Succeeded()).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch cancelled (%d/%d succeeded): %w", results.Succeeded(), len(reqs), err)
	}
	return results, nil
}
