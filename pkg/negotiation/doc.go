// Package negotiation implements HTTP content negotiation for MCP responses.
//
// It parses Accept and Accept-Encoding header values into quality-ranked
// preferences, selects the best representation the server can offer and
// decides whether a payload is worth compressing.
//
// # Parsing
//
//	types := negotiation.ParseAcceptHeader("text/html; q=0.8, application/json")
//	// [application/json, text/html; q=0.8]
//
//	encs := negotiation.ParseAcceptEncodingHeader("gzip; q=0.8, deflate, br; q=0.5")
//	// [deflate, gzip; q=0.8, br; q=0.5]
//
// Malformed quality values are not errors: a q that does not parse as a
// number is treated as 1.0, and parsed values are clamped into [0, 1].
//
// # Selection
//
//	ct, ok := negotiation.SelectContentType(accept, []string{"application/json", "text/html"})
//	enc, ok := negotiation.SelectEncoding(acceptEncoding, []string{"gzip", "identity"})
//
// An empty Accept header selects the first available type. An empty
// Accept-Encoding header always selects "identity".
//
// # Compression
//
//	if negotiation.ShouldCompress(acceptEncoding, 1024, len(body)) {
//		// client accepts gzip, deflate or br and the body is large enough
//	}
//
// ShouldCompress only asks whether the client accepts some compression. The
// encoding actually written is chosen separately with SelectEncoding over the
// encodings the server implements, so the two can disagree when a client
// only accepts an encoding the server does not produce. Callers fall back to
// identity in that case.
package negotiation
