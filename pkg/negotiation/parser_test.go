package negotiation

import (
	"reflect"
	"testing"
)

func TestParseMediaType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  MediaType
	}{
		{
			name:  "plain type",
			input: "application/json",
			want:  MediaType{Type: "application", Subtype: "json", Quality: 1.0},
		},
		{
			name:  "subtype wildcard with quality",
			input: "text/*; q=0.5",
			want:  MediaType{Type: "text", Subtype: "*", Quality: 0.5},
		},
		{
			name:  "missing slash defaults subtype",
			input: "application",
			want:  MediaType{Type: "application", Subtype: "*", Quality: 1.0},
		},
		{
			name:  "params retained",
			input: "text/html; charset=utf-8; level=1",
			want: MediaType{
				Type: "text", Subtype: "html", Quality: 1.0,
				Params: map[string]string{"charset": "utf-8", "level": "1"},
			},
		},
		{
			name:  "duplicate params overwrite",
			input: "text/html; level=1; level=2",
			want: MediaType{
				Type: "text", Subtype: "html", Quality: 1.0,
				Params: map[string]string{"level": "2"},
			},
		},
		{
			name:  "param without value ignored",
			input: "text/html; flag",
			want:  MediaType{Type: "text", Subtype: "html", Quality: 1.0},
		},
		{
			name:  "whitespace around parts",
			input: "  application / json ;  q = 0.3 ",
			want:  MediaType{Type: "application", Subtype: "json", Quality: 0.3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMediaType(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseMediaType(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseQuality_ClampAndLeniency(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1.5", 1.0},
		{"-0.5", 0.0},
		{"abc", 1.0},
		{"", 1.0},
		{"NaN", 1.0},
		{"1e400", 1.0},
		{"-1e400", 0.0},
		{"0", 0.0},
		{"0.001", 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mt := ParseMediaType("text/html; q=" + tt.input)
			if mt.Quality != tt.want {
				t.Errorf("media quality for q=%q = %v, want %v", tt.input, mt.Quality, tt.want)
			}
			enc := ParseEncodingPreference("gzip; q=" + tt.input)
			if enc.Quality != tt.want {
				t.Errorf("encoding quality for q=%q = %v, want %v", tt.input, enc.Quality, tt.want)
			}
			if mt.Quality < 0 || mt.Quality > 1 || enc.Quality < 0 || enc.Quality > 1 {
				t.Errorf("quality out of range for q=%q", tt.input)
			}
		})
	}
}

func TestParseAcceptHeader_QualityOrder(t *testing.T) {
	got := ParseAcceptHeader("text/html; q=0.8, application/json")

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].FullType() != "application/json" || got[0].Quality != 1.0 {
		t.Errorf("got[0] = %v, want application/json (q=1.0)", got[0])
	}
	if got[1].FullType() != "text/html" || got[1].Quality != 0.8 {
		t.Errorf("got[1] = %v, want text/html (q=0.8)", got[1])
	}
}

func TestParseAcceptHeader_WildcardLast(t *testing.T) {
	header := "*/*; q=0.8, text/html, application/xhtml+xml, application/xml; q=0.9"
	got := ParseAcceptHeader(header)

	want := []string{"text/html", "application/xhtml+xml", "application/xml", "*/*"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].FullType() != w {
			t.Errorf("got[%d] = %s, want %s", i, got[i].FullType(), w)
		}
	}
}

func TestParseAcceptHeader_Specificity(t *testing.T) {
	got := ParseAcceptHeader("*/*, text/*, text/html")

	want := []string{"text/html", "text/*", "*/*"}
	for i, w := range want {
		if got[i].FullType() != w {
			t.Errorf("got[%d] = %s, want %s", i, got[i].FullType(), w)
		}
	}
}

func TestParseAcceptHeader_StableTies(t *testing.T) {
	got := ParseAcceptHeader("application/xml, application/json, text/plain")

	want := []string{"application/xml", "application/json", "text/plain"}
	for i, w := range want {
		if got[i].FullType() != w {
			t.Errorf("got[%d] = %s, want %s (header order must be kept)", i, got[i].FullType(), w)
		}
	}
}

func TestParseAcceptHeader_Empty(t *testing.T) {
	if got := ParseAcceptHeader(""); len(got) != 0 {
		t.Errorf("ParseAcceptHeader(\"\") = %v, want empty", got)
	}
	if got := ParseAcceptEncodingHeader(""); len(got) != 0 {
		t.Errorf("ParseAcceptEncodingHeader(\"\") = %v, want empty", got)
	}
}

func TestParseAcceptEncodingHeader(t *testing.T) {
	got := ParseAcceptEncodingHeader("gzip; q=0.8, deflate, br; q=0.5")

	want := []EncodingPreference{
		{Encoding: "deflate", Quality: 1.0},
		{Encoding: "gzip", Quality: 0.8},
		{Encoding: "br", Quality: 0.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseAcceptEncodingHeader() = %v, want %v", got, want)
	}
}

func TestParseAcceptEncodingHeader_NoSpecificityTieBreak(t *testing.T) {
	got := ParseAcceptEncodingHeader("*, gzip")

	if got[0].Encoding != "*" || got[1].Encoding != "gzip" {
		t.Errorf("got %v, want [* gzip] in header order", got)
	}
}

func TestMediaType_String(t *testing.T) {
	tests := []struct {
		mt   MediaType
		want string
	}{
		{MediaType{Type: "application", Subtype: "json", Quality: 1.0}, "application/json"},
		{MediaType{Type: "text", Subtype: "*", Quality: 0.5}, "text/*; q=0.5"},
		{
			MediaType{Type: "text", Subtype: "html", Quality: 0.9, Params: map[string]string{"level": "1", "charset": "utf-8"}},
			"text/html; charset=utf-8; level=1; q=0.9",
		},
	}

	for _, tt := range tests {
		if got := tt.mt.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEncodingPreference_String(t *testing.T) {
	if got := (EncodingPreference{Encoding: "gzip", Quality: 1.0}).String(); got != "gzip" {
		t.Errorf("String() = %q, want gzip", got)
	}
	if got := (EncodingPreference{Encoding: "br", Quality: 0.5}).String(); got != "br; q=0.5" {
		t.Errorf("String() = %q, want \"br; q=0.5\"", got)
	}
}

func TestMediaType_Matches(t *testing.T) {
	tests := []struct {
		name        string
		mediaRange  string
		contentType string
		want        bool
	}{
		{"any matches json", "*/*", "application/json", true},
		{"type wildcard same type", "application/*", "application/json", true},
		{"type wildcard other type", "text/*", "application/json", false},
		{"exact match", "application/json", "application/json", true},
		{"exact mismatch", "application/xml", "application/json", false},
		{"prefix is not a type match", "app/*", "application/json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMediaType(tt.mediaRange).Matches(tt.contentType); got != tt.want {
				t.Errorf("%s.Matches(%s) = %v, want %v", tt.mediaRange, tt.contentType, got, tt.want)
			}
		})
	}
}

func TestEncodingPreference_Matches(t *testing.T) {
	if !(EncodingPreference{Encoding: "*"}).Matches("gzip") {
		t.Error("wildcard should match gzip")
	}
	if !(EncodingPreference{Encoding: "gzip"}).Matches("gzip") {
		t.Error("gzip should match gzip")
	}
	if (EncodingPreference{Encoding: "br"}).Matches("gzip") {
		t.Error("br should not match gzip")
	}
}
