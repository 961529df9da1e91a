package mcperr

import "net/http"

// JSON-RPC 2.0 error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// Implementation-defined server errors
	CodeServerErrorStart = -32099
	CodeServerErrorEnd   = -32000
)

// MCP error codes in the reserved server range
const (
	CodeValidation     = -32001
	CodeAuthentication = -32002
	CodeAuthorization  = -32003
	CodeNotFound       = -32004
	CodeConflict       = -32005
	CodeExternalAPI    = -32006
	CodeRateLimit      = -32007
	CodeTimeout        = -32008
	CodeConfiguration  = -32009
)

// Kind selects the variant of an Error.
type Kind string

const (
	KindParse          Kind = "parse"
	KindInvalidRequest Kind = "invalid_request"
	KindMethodNotFound Kind = "method_not_found"
	KindInvalidParams  Kind = "invalid_params"
	KindInternal       Kind = "internal"
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindAPI            Kind = "external_api"
	KindRateLimit      Kind = "rate_limit"
	KindTimeout        Kind = "timeout"
	KindConfiguration  Kind = "configuration"
)

var kindByCode = map[int]Kind{
	CodeParseError:     KindParse,
	CodeInvalidRequest: KindInvalidRequest,
	CodeMethodNotFound: KindMethodNotFound,
	CodeInvalidParams:  KindInvalidParams,
	CodeInternalError:  KindInternal,
	CodeValidation:     KindValidation,
	CodeAuthentication: KindAuthentication,
	CodeAuthorization:  KindAuthorization,
	CodeNotFound:       KindNotFound,
	CodeConflict:       KindConflict,
	CodeExternalAPI:    KindAPI,
	CodeRateLimit:      KindRateLimit,
	CodeTimeout:        KindTimeout,
	CodeConfiguration:  KindConfiguration,
}

var statusByKind = map[Kind]int{
	KindParse:          http.StatusBadRequest,
	KindInvalidRequest: http.StatusBadRequest,
	KindMethodNotFound: http.StatusNotFound,
	KindInvalidParams:  http.StatusBadRequest,
	KindInternal:       http.StatusInternalServerError,
	KindValidation:     http.StatusBadRequest,
	KindAuthentication: http.StatusUnauthorized,
	KindAuthorization:  http.StatusForbidden,
	KindNotFound:       http.StatusNotFound,
	KindConflict:       http.StatusConflict,
	KindAPI:            http.StatusBadGateway,
	KindRateLimit:      http.StatusTooManyRequests,
	KindTimeout:        http.StatusGatewayTimeout,
	KindConfiguration:  http.StatusInternalServerError,
}

// KindOf returns the kind for a code. Unknown codes are KindInternal.
func KindOf(code int) Kind {
	if k, ok := kindByCode[code]; ok {
		return k
	}
	return KindInternal
}

// IsServerErrorCode reports whether code lies in the implementation-defined
// range -32099..-32000.
func IsServerErrorCode(code int) bool {
	return code >= CodeServerErrorStart && code <= CodeServerErrorEnd
}
