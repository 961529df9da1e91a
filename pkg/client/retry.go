package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// maxBackoff caps the exponential wait between attempts. An InitialBackoff
// above it is used as is.
const maxBackoff = 5 * time.Minute

// backoff returns the wait after the given 0-indexed attempt:
// InitialBackoff * 2^attempt, without jitter, capped at maxBackoff.
func (c *Client) backoff(attempt int) time.Duration {
	limit := max(maxBackoff, c.config.InitialBackoff)

	d := c.config.InitialBackoff
	for i := 0; i < attempt && d > 0; i++ {
		if d > limit/2 {
			return limit
		}
		d *= 2
	}
	return d
}

// retryWithBackoff runs fn up to MaxRetries times. Server and network
// failures are retried after an exponential backoff; any other failure is
// returned at once. When all attempts fail the last error is returned,
// wrapped in ErrRetryExhausted.
func (c *Client) retryWithBackoff(ctx context.Context, method, target string, fn func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	maxAttempts := c.config.MaxRetries

	var lastErr error
	var lastClass ErrorClass

	for attempt := 0; attempt < maxAttempts; attempt++ {
		c.logger.Info().
			Str("method", method).
			Str("url", target).
			Int("attempt", attempt+1).
			Int("max_retries", maxAttempts).
			Msg("HTTP request")

		body, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				c.logger.Info().
					Str("method", method).
					Str("url", target).
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			return body, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrContextCancelled, ctxErr)
		}

		lastErr = err
		lastClass = classOf(err)

		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			reqErr.Attempts = attempt + 1
		}

		if !shouldRetry(lastClass) {
			c.logger.Error().
				Err(err).
				Str("method", method).
				Str("url", target).
				Str("error_class", string(lastClass)).
				Msg("Request failed, not retrying")
			return nil, err
		}

		// If this was the last attempt, don't wait
		if attempt >= maxAttempts-1 {
			break
		}

		wait := c.backoff(attempt)
		retriesTotal.WithLabelValues(string(lastClass)).Inc()
		retryBackoffSeconds.WithLabelValues(string(lastClass)).Observe(wait.Seconds())

		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("url", target).
			Str("error_class", string(lastClass)).
			Int("attempt", attempt+1).
			Dur("retry_after", wait).
			Msg("Retrying request after backoff")

		if err := c.sleep(ctx, wait); err != nil {
			c.logger.Warn().
				Str("method", method).
				Str("url", target).
				Int("attempt", attempt+1).
				Msg("Context cancelled during retry backoff")
			return nil, fmt.Errorf("%w: %w", ErrContextCancelled, err)
		}
	}

	if lastErr == nil {
		return nil, fmt.Errorf("%s %s: request failed after all retries", method, target)
	}

	retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	c.logger.Error().
		Err(lastErr).
		Str("method", method).
		Str("url", target).
		Str("error_class", string(lastClass)).
		Int("max_retries", maxAttempts).
		Msg("Retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, maxAttempts, lastErr)
}

// classOf returns the error class carried by err. Errors that did not come
// from an HTTP exchange have no class and are never retried.
func classOf(err error) ErrorClass {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ErrorClass
	}
	return ""
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
