package cache

import (
	"encoding/json"
	"time"
)

// Entry is a cached JSON response body.
type Entry struct {
	// Value is the response body exactly as received. It is always valid JSON.
	Value json.RawMessage `json:"value"`

	// StoredAt is when the entry was written.
	StoredAt time.Time `json:"stored_at"`
}

// NewEntry returns an entry for value stored at now.
func NewEntry(value json.RawMessage, now time.Time) *Entry {
	return &Entry{Value: value, StoredAt: now}
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// IsValid reports whether the entry is younger than ttl at now.
func (e *Entry) IsValid(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// Remaining returns the time left before the entry expires.
// Returns 0 if already expired.
func (e *Entry) Remaining(now time.Time, ttl time.Duration) time.Duration {
	left := ttl - e.Age(now)
	if left < 0 {
		return 0
	}
	return left
}
