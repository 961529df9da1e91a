package cache

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
)

// CacheKey identifies a cached GET response.
type CacheKey struct {
	// URL is the absolute request URL without query string.
	URL string

	// Params are the query parameters sent with the request.
	Params url.Values
}

// String returns the canonical key text: the URL followed by the query
// parameters sorted by name, so caller ordering never changes the key.
//
// Example:
//
//	https://api.example.ch/v1/stations?canton=ZH&limit=10
func (k CacheKey) String() string {
	if len(k.Params) == 0 {
		return k.URL
	}
	return k.URL + "?" + k.Params.Encode()
}

// Hash returns the hex MD5 digest of String. It is the key used by stores.
func (k CacheKey) Hash() string {
	sum := md5.Sum([]byte(k.String()))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 8 characters of Hash, for log lines.
func ShortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
