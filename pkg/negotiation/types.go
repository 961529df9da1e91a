package negotiation

import (
	"sort"
	"strconv"
	"strings"
)

// Common content types for API responses.
const (
	ContentTypeJSON        = "application/json"
	ContentTypeJSONUTF8    = "application/json; charset=utf-8"
	ContentTypeGzip        = "application/gzip"
	ContentTypeOctetStream = "application/octet-stream"
	ContentTypeTextPlain   = "text/plain"
	ContentTypeTextHTML    = "text/html"
)

// Common content encodings.
const (
	EncodingIdentity = "identity"
	EncodingGzip     = "gzip"
	EncodingDeflate  = "deflate"
	EncodingBrotli   = "br"
)

// Wildcard matches any type, subtype or encoding.
const Wildcard = "*"

// MediaType is one parsed entry of an Accept header.
type MediaType struct {
	Type    string
	Subtype string

	// Quality is the client preference weight, always within [0, 1].
	Quality float64

	// Params holds every parameter except q. Nil when there are none.
	Params map[string]string
}

// FullType returns "type/subtype".
func (m MediaType) FullType() string {
	return m.Type + "/" + m.Subtype
}

// Matches reports whether contentType (e.g. "application/json") is acceptable
// under this media range.
func (m MediaType) Matches(contentType string) bool {
	if m.Type == Wildcard && m.Subtype == Wildcard {
		return true
	}
	if m.Subtype == Wildcard {
		return strings.HasPrefix(contentType, m.Type+"/")
	}
	return contentType == m.FullType()
}

// String renders the media type back into header form. Parameters are
// written in key order, followed by q when it differs from 1.
func (m MediaType) String() string {
	var b strings.Builder
	b.WriteString(m.FullType())

	if len(m.Params) > 0 {
		keys := make([]string, 0, len(m.Params))
		for k := range m.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("; ")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(m.Params[k])
		}
	}

	if m.Quality != 1.0 {
		b.WriteString("; q=")
		b.WriteString(formatQuality(m.Quality))
	}
	return b.String()
}

// EncodingPreference is one parsed entry of an Accept-Encoding header.
type EncodingPreference struct {
	Encoding string

	// Quality is the client preference weight, always within [0, 1].
	Quality float64
}

// Matches reports whether encoding is acceptable under this preference.
func (e EncodingPreference) Matches(encoding string) bool {
	return e.Encoding == Wildcard || e.Encoding == encoding
}

// String renders the preference back into header form.
func (e EncodingPreference) String() string {
	if e.Quality != 1.0 {
		return e.Encoding + "; q=" + formatQuality(e.Quality)
	}
	return e.Encoding
}

func formatQuality(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
