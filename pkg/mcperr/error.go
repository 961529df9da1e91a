// Package mcperr defines the error shape every user-facing MCP error
// converges to: a JSON-RPC error code, a human message, structured details
// and an optional cause.
package mcperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// maxResponseBody bounds the upstream response kept in API error details.
const maxResponseBody = 500

// Error is an MCP error. Kind selects the variant; Details carries the
// variant's structured payload.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Details map[string]any
	Cause   error
}

// New creates an error with an explicit code.
func New(code int, message string, details map[string]any, cause error) *Error {
	if details == nil {
		details = map[string]any{}
	}
	return &Error{
		Kind:    KindOf(code),
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code, so sentinel values such as
// errors.Is(err, &mcperr.Error{Code: mcperr.CodeNotFound}) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// ToDict renders the JSON-RPC error object. "data" is present only when
// there are details.
func (e *Error) ToDict() map[string]any {
	obj := map[string]any{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		obj["data"] = e.Details
	}
	return obj
}

// HTTPStatus maps the error to an HTTP status for gateway responses.
func (e *Error) HTTPStatus() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *Error) MarshalZerologObject(ev *zerolog.Event) {
	ev.Int("code", e.Code).
		Str("kind", string(e.Kind)).
		Str("error_message", e.Message)
	if len(e.Details) > 0 {
		ev.Interface("details", e.Details)
	}
	if e.Cause != nil {
		ev.Str("cause", e.Cause.Error())
	}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Validation reports invalid input. field and value are optional.
func Validation(message, field string, value any) *Error {
	details := map[string]any{}
	if field != "" {
		details["field"] = field
	}
	if value != nil {
		details["value"] = fmt.Sprint(value)
	}
	return New(CodeValidation, message, details, nil)
}

// InvalidParams reports malformed call parameters.
func InvalidParams(message string, cause error) *Error {
	return New(CodeInvalidParams, message, nil, cause)
}

// API reports a failed call to an external API. The response body is
// truncated to 500 bytes.
func API(message, apiName string, statusCode int, responseBody string, cause error) *Error {
	details := map[string]any{"api": apiName}
	if statusCode != 0 {
		details["status_code"] = statusCode
	}
	if responseBody != "" {
		if len(responseBody) > maxResponseBody {
			responseBody = responseBody[:maxResponseBody]
		}
		details["response"] = responseBody
	}
	return New(CodeExternalAPI, message, details, cause)
}

// Configuration reports a missing or invalid configuration key.
func Configuration(message, configKey string, cause error) *Error {
	details := map[string]any{}
	if configKey != "" {
		details["config_key"] = configKey
	}
	return New(CodeConfiguration, message, details, cause)
}

// Authentication reports failed authentication. An empty message becomes
// "Authentication failed".
func Authentication(message string, cause error) *Error {
	if message == "" {
		message = "Authentication failed"
	}
	return New(CodeAuthentication, message, nil, cause)
}

// RateLimit reports an exceeded rate limit. retryAfterSeconds is omitted
// when zero.
func RateLimit(message string, retryAfterSeconds int, cause error) *Error {
	details := map[string]any{}
	if retryAfterSeconds > 0 {
		details["retry_after_seconds"] = retryAfterSeconds
	}
	return New(CodeRateLimit, message, details, cause)
}

// Timeout reports an operation that ran out of time. timeoutSeconds is
// omitted when zero.
func Timeout(message string, timeoutSeconds float64, cause error) *Error {
	details := map[string]any{}
	if timeoutSeconds > 0 {
		details["timeout_seconds"] = timeoutSeconds
	}
	return New(CodeTimeout, message, details, cause)
}

// NotFound reports a missing resource.
func NotFound(message, resource string) *Error {
	details := map[string]any{}
	if resource != "" {
		details["resource"] = resource
	}
	return New(CodeNotFound, message, details, nil)
}

// Internal reports an unexpected failure.
func Internal(message string, cause error) *Error {
	return New(CodeInternalError, message, nil, cause)
}
