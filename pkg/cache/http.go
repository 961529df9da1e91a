package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResponseToEntry reads the response body into an Entry stored at now.
// The body must be valid JSON; otherwise the error wraps ErrInvalidEntry.
// Read failures are returned as they are and never wrap ErrInvalidEntry.
// The response body is restored after reading.
func ResponseToEntry(resp *http.Response, now time.Time) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()

	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(body))

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: response body is not valid JSON", ErrInvalidEntry)
	}

	return NewEntry(json.RawMessage(trimmed), now), nil
}
