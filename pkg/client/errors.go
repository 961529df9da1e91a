package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrClientNotInitialized is returned when Get or Post is called outside
	// an Open/Close scope.
	ErrClientNotInitialized = errors.New("client not initialized: call Open or use With")

	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during a
	// request, a rate limit wait or a retry backoff.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrInvalidJSON is returned when a successful response body is not JSON.
	ErrInvalidJSON = errors.New("response is not valid JSON")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx and other non-success, non-5xx statuses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents connection errors and timeouts.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx response whose body is not JSON.
	ErrorClassDecode ErrorClass = "decode"
)

// maxErrorBody bounds the response body kept on a RequestError.
const maxErrorBody = 500

// RequestError is a failed request with enough context to log it or map it
// to a protocol-level error.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int // 0 when no response was received
	ErrorClass ErrorClass
	Attempts   int
	Message    string
	Body       string // first 500 bytes of the error response
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s %s: %s error", e.Method, e.URL, e.ErrorClass)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the request may succeed when retried.
func (e *RequestError) Temporary() bool {
	return shouldRetry(e.ErrorClass)
}

// classifyStatus maps a non-2xx status code to an error class.
func classifyStatus(status int) ErrorClass {
	if status >= http.StatusInternalServerError {
		return ErrorClassServer
	}
	return ErrorClassClient
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer:
		return true
	case ErrorClassNetwork:
		return true
	default:
		// Client errors cannot succeed on retry; decode errors are deterministic
		return false
	}
}

// truncateBody returns at most maxErrorBody bytes of b as a string.
func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
