// Package gateway exposes an upstream JSON API over HTTP through the cached
// client, with negotiated response compression and JSON-RPC shaped errors.
package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/swiss-mcp/mcp-commons/internal/config"
	"github.com/swiss-mcp/mcp-commons/pkg/client"
	"github.com/swiss-mcp/mcp-commons/pkg/logging"
	"github.com/swiss-mcp/mcp-commons/pkg/metrics"
)

// maxRequestBody bounds POST bodies forwarded upstream.
const maxRequestBody = 1 << 20

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mcp_gateway_requests_total",
		Help: "Total number of gateway requests by route and status",
	},
	[]string{"route", "status"},
)

// Options configures a Server.
type Options struct {
	// Name and Version are reported by /status.
	Name    string
	Version string

	// APIName names the upstream in error details.
	APIName string

	Negotiation config.NegotiationConfig

	// Timeout is reported in timeout errors.
	Timeout time.Duration

	Logger zerolog.Logger
}

// Server routes gateway requests to the upstream client.
type Server struct {
	Router *chi.Mux
	client *client.Client
	opts   Options
}

// New creates a Server. The client must be open before requests arrive.
func New(c *client.Client, opts Options) *Server {
	if c == nil {
		panic("client cannot be nil")
	}
	if opts.APIName == "" {
		opts.APIName = "upstream"
	}
	if opts.Negotiation == (config.NegotiationConfig{}) {
		opts.Negotiation = config.Default().Negotiation
	}
	if opts.Timeout == 0 {
		opts.Timeout = c.Config().Timeout
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(hlog.NewHandler(logging.Component(opts.Logger, "gateway")))
	r.Use(hlog.AccessHandler(accessLog))

	s := &Server{Router: r, client: c, opts: opts}

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/status", s.handleStatus)

	r.Route("/api", func(ar chi.Router) {
		ar.Use(s.requireJSONAccept)
		ar.Get("/*", s.handleProxyGet)
		ar.Post("/*", s.handleProxyPost)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	route := "unmatched"
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request handled")
}
