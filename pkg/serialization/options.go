package serialization

import "github.com/swiss-mcp/mcp-commons/pkg/negotiation"

// DefaultCharset is used for the Content-Type header and the byte encoding
// of the JSON text.
const DefaultCharset = "utf-8"

// Option configures serialization.
type Option func(*options)

type options struct {
	acceptEncoding  string
	minCompressSize int
	charset         string
	prefix          string
	indent          string
	escapeHTML      bool
}

func defaultOptions() options {
	return options{
		minCompressSize: negotiation.DefaultMinCompressSize,
		charset:         DefaultCharset,
		escapeHTML:      true,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.charset == "" {
		o.charset = DefaultCharset
	}
	return o
}

// WithAcceptEncoding sets the client's Accept-Encoding header value. Without
// it the payload is never compressed.
func WithAcceptEncoding(header string) Option {
	return func(o *options) {
		o.acceptEncoding = header
	}
}

// WithMinCompressSize sets the smallest encoded size, in bytes, that is
// compressed. The default is 1024.
func WithMinCompressSize(n int) Option {
	return func(o *options) {
		o.minCompressSize = n
	}
}

// WithCharset sets the charset used to encode the JSON text and advertised in
// Content-Type. The default is utf-8.
func WithCharset(charset string) Option {
	return func(o *options) {
		o.charset = charset
	}
}

// WithIndent pretty-prints the JSON text like json.MarshalIndent.
func WithIndent(prefix, indent string) Option {
	return func(o *options) {
		o.prefix = prefix
		o.indent = indent
	}
}

// WithEscapeHTML controls escaping of <, > and & inside JSON strings.
// Enabled by default.
func WithEscapeHTML(on bool) Option {
	return func(o *options) {
		o.escapeHTML = on
	}
}
