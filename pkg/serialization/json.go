package serialization

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrUnsupportedCharset is returned for charset names with no known encoder.
var ErrUnsupportedCharset = errors.New("unsupported charset")

// ToJSON renders obj as JSON text. With compress set, the UTF-8 text is
// gzip-compressed and returned base64-encoded instead.
func ToJSON(obj Serializable, compress bool, opts ...Option) (string, error) {
	o := buildOptions(opts)

	text, err := marshal(obj, o)
	if err != nil {
		return "", err
	}
	if !compress {
		return string(text), nil
	}

	gz, err := gzipBytes(text)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(gz), nil
}

// ToJSONGzipped renders obj as gzip-compressed UTF-8 JSON. With asBase64 set
// the compressed bytes are returned base64-encoded.
func ToJSONGzipped(obj Serializable, asBase64 bool, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)

	text, err := marshal(obj, o)
	if err != nil {
		return nil, err
	}

	gz, err := gzipBytes(text)
	if err != nil {
		return nil, err
	}
	if !asBase64 {
		return gz, nil
	}

	out := make([]byte, base64.StdEncoding.EncodedLen(len(gz)))
	base64.StdEncoding.Encode(out, gz)
	return out, nil
}

// marshal produces the JSON text of obj.ToDict() without a trailing newline.
func marshal(obj Serializable, o options) ([]byte, error) {
	if obj == nil {
		return nil, &CapabilityError{Type: "<nil>"}
	}
	if isNil(obj) {
		return nil, &CapabilityError{Type: fmt.Sprintf("%T", obj)}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(o.escapeHTML)
	if o.prefix != "" || o.indent != "" {
		enc.SetIndent(o.prefix, o.indent)
	}
	if err := enc.Encode(obj.ToDict()); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// encodeCharset converts UTF-8 text into the named charset.
func encodeCharset(text []byte, charset string) ([]byte, error) {
	switch strings.ToLower(charset) {
	case "utf-8", "utf8":
		return text, nil
	}

	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCharset, charset)
	}

	out, err := enc.NewEncoder().Bytes(escapeNonASCII(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", charset, err)
	}
	return out, nil
}

// escapeNonASCII rewrites every rune above U+007F as a JSON \uXXXX escape,
// using a surrogate pair outside the BMP. JSON text only carries such runes
// inside strings, so the result is equivalent JSON in pure ASCII.
func escapeNonASCII(text []byte) []byte {
	i := 0
	for i < len(text) && text[i] < utf8.RuneSelf {
		i++
	}
	if i == len(text) {
		return text
	}

	out := make([]byte, 0, len(text)+16)
	out = append(out, text[:i]...)
	for i < len(text) {
		if text[i] < utf8.RuneSelf {
			out = append(out, text[i])
			i++
			continue
		}
		r, size := utf8.DecodeRune(text[i:])
		i += size
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			out = appendUnicodeEscape(out, hi)
			out = appendUnicodeEscape(out, lo)
			continue
		}
		out = appendUnicodeEscape(out, r)
	}
	return out
}

func appendUnicodeEscape(out []byte, r rune) []byte {
	const hex = "0123456789abcdef"
	return append(out, '\\', 'u',
		hex[r>>12&0xF], hex[r>>8&0xF], hex[r>>4&0xF], hex[r&0xF])
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}
