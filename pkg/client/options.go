package client

import "net/http"

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	useCache bool
	header   http.Header
}

func buildRequestOptions(opts []RequestOption) requestOptions {
	o := requestOptions{
		useCache: true,
		header:   make(http.Header),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NoCache bypasses the cache for a GET: it is neither read nor written.
func NoCache() RequestOption {
	return func(o *requestOptions) {
		o.useCache = false
	}
}

// WithHeader adds a request header. User-Agent and Accept are always set by
// the client; an X-Request-ID given here replaces the generated one.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Add(key, value)
	}
}
