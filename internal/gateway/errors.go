package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/swiss-mcp/mcp-commons/pkg/client"
	"github.com/swiss-mcp/mcp-commons/pkg/mcperr"
)

// MapError converts an error from the client into the error shape returned
// to gateway callers. resource names the requested path or URL.
func MapError(err error, apiName, resource string, timeout time.Duration) *mcperr.Error {
	if e, ok := mcperr.As(err); ok {
		return e
	}

	var reqErr *client.RequestError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return mcperr.Timeout(fmt.Sprintf("%s request timed out", apiName), timeout.Seconds(), err)
	case errors.Is(err, client.ErrContextCancelled):
		return mcperr.New(mcperr.CodeInternalError, "request cancelled", nil, err)
	case errors.As(err, &reqErr):
		return requestError(reqErr, apiName, resource)
	case errors.Is(err, client.ErrClientNotInitialized):
		return mcperr.Internal("upstream client is not open", err)
	default:
		return mcperr.Internal("unexpected gateway error", err)
	}
}

func requestError(err *client.RequestError, apiName, resource string) *mcperr.Error {
	switch err.StatusCode {
	case http.StatusNotFound:
		return mcperr.NotFound(fmt.Sprintf("%s not found", resource), resource)
	case http.StatusTooManyRequests:
		return mcperr.RateLimit(fmt.Sprintf("%s rate limit exceeded", apiName), 0, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return mcperr.Authentication("", err)
	}

	switch err.ErrorClass {
	case client.ErrorClassDecode:
		return mcperr.API(fmt.Sprintf("%s returned invalid JSON", apiName), apiName, err.StatusCode, err.Body, err)
	case client.ErrorClassNetwork:
		return mcperr.API(fmt.Sprintf("%s is unreachable", apiName), apiName, 0, "", err)
	default:
		return mcperr.API(fmt.Sprintf("%s request failed", apiName), apiName, err.StatusCode, err.Body, err)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
