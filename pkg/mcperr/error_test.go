package mcperr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_String(t *testing.T) {
	err := Validation("Invalid coordinates", "latitude", 95.5)
	assert.Equal(t, "[-32001] Invalid coordinates", err.Error())
}

func TestValidation(t *testing.T) {
	err := Validation("Latitude out of range", "latitude", 95.5)

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "latitude", err.Details["field"])
	assert.Equal(t, "95.5", err.Details["value"])

	zero := Validation("Must be positive", "count", 0)
	assert.Equal(t, "0", zero.Details["value"])

	bare := Validation("Bad input", "", nil)
	assert.Empty(t, bare.Details)
	assert.NotContains(t, bare.ToDict(), "data")
}

func TestAPI(t *testing.T) {
	long := strings.Repeat("x", 800)
	err := API("Upstream failed", "opendata.swiss", 503, long, nil)

	assert.Equal(t, CodeExternalAPI, err.Code)
	assert.Equal(t, "opendata.swiss", err.Details["api"])
	assert.Equal(t, 503, err.Details["status_code"])
	assert.Len(t, err.Details["response"], 500)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())

	minimal := API("Upstream failed", "meteo", 0, "", nil)
	assert.NotContains(t, minimal.Details, "status_code")
	assert.NotContains(t, minimal.Details, "response")
}

func TestConstructors(t *testing.T) {
	cause := errors.New("dial tcp: timeout")

	tests := []struct {
		name       string
		err        *Error
		wantCode   int
		wantStatus int
		wantDetail string
	}{
		{"configuration", Configuration("Missing API key", "SBB_API_KEY", nil), CodeConfiguration, 500, "config_key"},
		{"authentication", Authentication("", nil), CodeAuthentication, 401, ""},
		{"rate limit", RateLimit("Too many requests", 60, nil), CodeRateLimit, 429, "retry_after_seconds"},
		{"timeout", Timeout("Upstream timed out", 30, cause), CodeTimeout, 504, "timeout_seconds"},
		{"not found", NotFound("Station not found", "station"), CodeNotFound, 404, "resource"},
		{"internal", Internal("Unexpected failure", cause), CodeInternalError, 500, ""},
		{"invalid params", InvalidParams("Bad params", nil), CodeInvalidParams, 400, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, KindOf(tt.wantCode), tt.err.Kind)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
			if tt.wantDetail != "" {
				assert.Contains(t, tt.err.Details, tt.wantDetail)
			}
		})
	}

	assert.Equal(t, "Authentication failed", Authentication("", nil).Message)
	assert.Empty(t, RateLimit("slow down", 0, nil).Details)
}

func TestToDict_JSON(t *testing.T) {
	err := Validation("Latitude out of range", "latitude", 95.5)

	raw, mErr := json.Marshal(err.ToDict())
	require.NoError(t, mErr)
	assert.JSONEq(t, `{"code":-32001,"message":"Latitude out of range","data":{"field":"latitude","value":"95.5"}}`, string(raw))
}

func TestUnwrapAndAs(t *testing.T) {
	cause := errors.New("connection reset")
	err := Timeout("Upstream timed out", 5, cause)
	wrapped := fmt.Errorf("tool call: %w", err)

	assert.ErrorIs(t, wrapped, cause)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeTimeout, got.Code)

	_, ok = As(cause)
	assert.False(t, ok)
}

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("Station not found", "station"))

	assert.True(t, errors.Is(err, &Error{Code: CodeNotFound}))
	assert.False(t, errors.Is(err, &Error{Code: CodeConflict}))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindParse, KindOf(CodeParseError))
	assert.Equal(t, KindAPI, KindOf(CodeExternalAPI))
	assert.Equal(t, KindInternal, KindOf(12345))

	assert.True(t, IsServerErrorCode(CodeValidation))
	assert.True(t, IsServerErrorCode(CodeServerErrorStart))
	assert.False(t, IsServerErrorCode(CodeInternalError))
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger.Error().EmbedObject(API("Upstream failed", "meteo", 502, "bad gateway", nil)).Msg("MCP error")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.EqualValues(t, CodeExternalAPI, entry["code"])
	assert.Equal(t, "external_api", entry["kind"])
	assert.Contains(t, entry, "details")
}
