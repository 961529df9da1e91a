package negotiation

// SelectContentType picks the best of available for the given Accept header.
//
// Preferences are walked in quality order; for each one, available is scanned
// in the caller's order and the first match wins. An empty header selects
// the first available type. ok is false when nothing matches.
func SelectContentType(acceptHeader string, available []string) (contentType string, ok bool) {
	if acceptHeader == "" {
		if len(available) == 0 {
			return "", false
		}
		return available[0], true
	}

	for _, mt := range ParseAcceptHeader(acceptHeader) {
		for _, candidate := range available {
			if mt.Matches(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}

// SelectEncoding picks the best of available for the given Accept-Encoding
// header.
//
// An empty header selects "identity" even when it is not listed in
// available, since identity is always acceptable. When no preference
// matches, "identity" is returned if available contains it; otherwise ok is
// false.
func SelectEncoding(acceptEncodingHeader string, available []string) (encoding string, ok bool) {
	if acceptEncodingHeader == "" {
		return EncodingIdentity, true
	}

	for _, pref := range ParseAcceptEncodingHeader(acceptEncodingHeader) {
		for _, candidate := range available {
			if pref.Matches(candidate) {
				return candidate, true
			}
		}
	}

	for _, candidate := range available {
		if candidate == EncodingIdentity {
			return EncodingIdentity, true
		}
	}
	return "", false
}

// BuildContentTypeHeader returns a Content-Type value, appending the charset
// parameter when charset is not empty.
func BuildContentTypeHeader(contentType, charset string) string {
	if charset == "" {
		return contentType
	}
	return contentType + "; charset=" + charset
}
