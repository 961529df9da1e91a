package negotiation

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ParseMediaType parses a single Accept entry such as "text/*; q=0.5".
// A value without "/" gets subtype "*".
func ParseMediaType(s string) MediaType {
	parts := splitTrim(s, ";")

	mt := MediaType{Quality: 1.0}
	if typ, sub, ok := strings.Cut(parts[0], "/"); ok {
		mt.Type = strings.TrimSpace(typ)
		mt.Subtype = strings.TrimSpace(sub)
	} else {
		mt.Type = parts[0]
		mt.Subtype = Wildcard
	}

	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "q" {
			mt.Quality = parseQuality(value)
			continue
		}
		if mt.Params == nil {
			mt.Params = make(map[string]string)
		}
		mt.Params[key] = value
	}

	return mt
}

// ParseAcceptHeader parses an Accept header into media types ordered by
// quality, highest first. Among equal qualities a fully specific type ranks
// above type/*, which ranks above */*. The sort is stable, so entries that
// tie keep their header order.
func ParseAcceptHeader(header string) []MediaType {
	if header == "" {
		return []MediaType{}
	}

	var types []MediaType
	for _, entry := range splitTrim(header, ",") {
		if entry == "" {
			continue
		}
		types = append(types, ParseMediaType(entry))
	}

	sort.SliceStable(types, func(i, j int) bool {
		a, b := types[i], types[j]
		if a.Quality != b.Quality {
			return a.Quality > b.Quality
		}
		if aSpec, bSpec := a.Type != Wildcard, b.Type != Wildcard; aSpec != bSpec {
			return aSpec
		}
		if aSpec, bSpec := a.Subtype != Wildcard, b.Subtype != Wildcard; aSpec != bSpec {
			return aSpec
		}
		return false
	})

	return types
}

// ParseEncodingPreference parses a single Accept-Encoding entry such as
// "br; q=0.5". Parameters other than q are ignored.
func ParseEncodingPreference(s string) EncodingPreference {
	parts := splitTrim(s, ";")

	pref := EncodingPreference{Encoding: parts[0], Quality: 1.0}
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == "q" {
			pref.Quality = parseQuality(strings.TrimSpace(value))
		}
	}

	return pref
}

// ParseAcceptEncodingHeader parses an Accept-Encoding header into
// preferences ordered by quality, highest first. Ties keep header order.
func ParseAcceptEncodingHeader(header string) []EncodingPreference {
	if header == "" {
		return []EncodingPreference{}
	}

	var prefs []EncodingPreference
	for _, entry := range splitTrim(header, ",") {
		if entry == "" {
			continue
		}
		prefs = append(prefs, ParseEncodingPreference(entry))
	}

	sort.SliceStable(prefs, func(i, j int) bool {
		return prefs[i].Quality > prefs[j].Quality
	})

	return prefs
}

// parseQuality converts a q value, falling back to 1.0 when it is not a
// number and clamping the result into [0, 1].
func parseQuality(value string) float64 {
	q, err := strconv.ParseFloat(value, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 1.0
	}
	// Out-of-range values come back as ±Inf and clamp like any other.
	if math.IsNaN(q) {
		return 1.0
	}
	return math.Max(0.0, math.Min(1.0, q))
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
