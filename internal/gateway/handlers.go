package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"

	"github.com/swiss-mcp/mcp-commons/pkg/client"
	"github.com/swiss-mcp/mcp-commons/pkg/mcperr"
	"github.com/swiss-mcp/mcp-commons/pkg/negotiation"
	"github.com/swiss-mcp/mcp-commons/pkg/serialization"
)

// producedTypes are the media types the gateway can answer with.
var producedTypes = []string{negotiation.ContentTypeJSON}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, serialization.Dict{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, serialization.Dict{
		"name":    s.opts.Name,
		"version": s.opts.Version,
		"client":  s.client.ToDict(),
	})
}

// handleProxyGet forwards GET /api/<path>?<query> to the upstream. A
// "Cache-Control: no-cache" request header bypasses the response cache.
func (s *Server) handleProxyGet(w http.ResponseWriter, r *http.Request) {
	path := upstreamPath(r)

	opts := s.forwardOptions(r)
	if strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache") {
		opts = append(opts, client.NoCache())
	}

	data, err := s.client.Get(r.Context(), path, r.URL.Query(), opts...)
	if err != nil {
		s.fail(w, r, MapError(err, s.opts.APIName, path, s.opts.Timeout))
		return
	}

	s.write(w, r, http.StatusOK, serialization.Dict{"data": data})
}

// handleProxyPost forwards a JSON body to POST /api/<path>.
func (s *Server) handleProxyPost(w http.ResponseWriter, r *http.Request) {
	path := upstreamPath(r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		s.fail(w, r, mcperr.New(mcperr.CodeInvalidRequest, "read request body", nil, err))
		return
	}
	if len(body) > maxRequestBody {
		s.fail(w, r, mcperr.Validation(fmt.Sprintf("request body exceeds %d bytes", maxRequestBody), "body", len(body)))
		return
	}

	var payload any
	if len(strings.TrimSpace(string(body))) > 0 {
		if !json.Valid(body) {
			s.fail(w, r, mcperr.New(mcperr.CodeParseError, "request body is not valid JSON", nil, nil))
			return
		}
		payload = json.RawMessage(body)
	}

	data, err := s.client.Post(r.Context(), path, payload, s.forwardOptions(r)...)
	if err != nil {
		s.fail(w, r, MapError(err, s.opts.APIName, path, s.opts.Timeout))
		return
	}

	s.write(w, r, http.StatusOK, serialization.Dict{"data": data})
}

// requireJSONAccept rejects requests whose Accept header excludes JSON.
func (s *Server) requireJSONAccept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept")
		if _, ok := negotiation.SelectContentType(accept, producedTypes); !ok {
			e := mcperr.New(mcperr.CodeInvalidRequest, "no acceptable content type", map[string]any{
				"accept":    accept,
				"available": producedTypes,
			}, nil)
			s.write(w, r, http.StatusNotAcceptable, serialization.Dict{"error": e.ToDict()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) forwardOptions(r *http.Request) []client.RequestOption {
	if id := chimw.GetReqID(r.Context()); id != "" {
		return []client.RequestOption{client.WithHeader("X-Request-ID", id)}
	}
	return nil
}

func upstreamPath(r *http.Request) string {
	return "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, e *mcperr.Error) {
	hlog.FromRequest(r).Warn().Object("error", e).Msg("Request failed")
	s.write(w, r, e.HTTPStatus(), serialization.Dict{"error": e.ToDict()})
}

// write serializes obj according to the request's Accept-Encoding.
func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, obj serialization.Serializable) {
	p, err := serialization.SerializeWithNegotiation(obj,
		serialization.WithAcceptEncoding(r.Header.Get("Accept-Encoding")),
		serialization.WithMinCompressSize(s.opts.Negotiation.MinCompressSize),
		serialization.WithCharset(s.opts.Negotiation.Charset),
	)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to serialize response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := serialization.WriteResponse(w, status, p); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to write response")
	}
}
