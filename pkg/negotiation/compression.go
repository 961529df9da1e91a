package negotiation

// DefaultMinCompressSize is the smallest payload worth compressing.
const DefaultMinCompressSize = 1024

// compressible lists the encodings that count as "client accepts compression".
var compressible = map[string]bool{
	EncodingGzip:    true,
	EncodingDeflate: true,
	EncodingBrotli:  true,
}

// ShouldCompress reports whether a payload of contentSize bytes should be
// compressed for a client sending acceptEncodingHeader.
//
// The size gate always wins: payloads smaller than minSizeBytes are never
// compressed. Otherwise the client must list gzip, deflate or br with a
// quality above zero. The server's own encoding support is not consulted.
func ShouldCompress(acceptEncodingHeader string, minSizeBytes, contentSize int) bool {
	if contentSize < minSizeBytes {
		return false
	}
	if acceptEncodingHeader == "" {
		return false
	}

	for _, pref := range ParseAcceptEncodingHeader(acceptEncodingHeader) {
		if compressible[pref.Encoding] && pref.Quality > 0 {
			return true
		}
	}
	return false
}
