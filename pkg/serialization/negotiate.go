package serialization

import (
	"net/http"
	"strconv"

	"github.com/swiss-mcp/mcp-commons/pkg/negotiation"
)

// producedEncodings are the encodings this package can write. Only gzip is
// implemented even though deflate and br are understood by the parser.
var producedEncodings = []string{negotiation.EncodingGzip, negotiation.EncodingIdentity}

// Payload is a serialized response body with the headers describing it.
type Payload struct {
	Body []byte

	// Header holds Content-Type, Content-Length and, when compressed,
	// Content-Encoding.
	Header http.Header

	// Encoding is "gzip" or "identity".
	Encoding string
}

// Compressed reports whether Body is gzip-compressed.
func (p *Payload) Compressed() bool {
	return p.Encoding == negotiation.EncodingGzip
}

// Text returns the body as a string. Only meaningful when not compressed.
func (p *Payload) Text() string {
	return string(p.Body)
}

// SerializeWithNegotiation renders obj as JSON and gzip-compresses it when
// the client accepts compression, the encoded size reaches the threshold and
// gzip is the negotiated encoding.
//
// The returned Content-Length is always the exact byte length of Body.
func SerializeWithNegotiation(obj Serializable, opts ...Option) (*Payload, error) {
	o := buildOptions(opts)

	text, err := marshal(obj, o)
	if err != nil {
		return nil, err
	}

	body, err := encodeCharset(text, o.charset)
	if err != nil {
		return nil, err
	}
	contentSize := len(body)

	header := make(http.Header)
	header.Set("Content-Type", negotiation.BuildContentTypeHeader(negotiation.ContentTypeJSON, o.charset))

	if o.acceptEncoding != "" && negotiation.ShouldCompress(o.acceptEncoding, o.minCompressSize, contentSize) {
		if enc, ok := negotiation.SelectEncoding(o.acceptEncoding, producedEncodings); ok && enc == negotiation.EncodingGzip {
			compressed, err := gzipBytes(body)
			if err != nil {
				return nil, err
			}

			header.Set("Content-Encoding", negotiation.EncodingGzip)
			header.Set("Content-Length", strconv.Itoa(len(compressed)))
			observePayload(negotiation.EncodingGzip, contentSize, len(compressed))

			return &Payload{Body: compressed, Header: header, Encoding: negotiation.EncodingGzip}, nil
		}
	}

	header.Set("Content-Length", strconv.Itoa(contentSize))
	observePayload(negotiation.EncodingIdentity, contentSize, contentSize)

	return &Payload{Body: body, Header: header, Encoding: negotiation.EncodingIdentity}, nil
}

// WriteResponse writes p to w with the given status code. It is the net/http
// binding of SerializeWithNegotiation.
func WriteResponse(w http.ResponseWriter, status int, p *Payload) error {
	h := w.Header()
	for key, values := range p.Header {
		h.Del(key)
		for _, v := range values {
			h.Add(key, v)
		}
	}
	h.Add("Vary", "Accept-Encoding")

	w.WriteHeader(status)
	_, err := w.Write(p.Body)
	return err
}
