package serialization

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PayloadsTotal counts serialized payloads by content encoding.
	PayloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_serialized_payloads_total",
			Help: "Total number of negotiated JSON payloads by content encoding",
		},
		[]string{"encoding"}, // "gzip", "identity"
	)

	// PayloadBytes tracks the size of payloads as written to the wire.
	PayloadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcp_serialized_payload_bytes",
			Help:    "Size of negotiated JSON payloads in bytes by content encoding",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"encoding"},
	)

	// CompressionSavedBytes counts bytes saved by gzip.
	CompressionSavedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mcp_compression_saved_bytes_total",
			Help: "Total number of bytes saved by compressing payloads",
		},
	)
)

func observePayload(encoding string, rawSize, wireSize int) {
	PayloadsTotal.WithLabelValues(encoding).Inc()
	PayloadBytes.WithLabelValues(encoding).Observe(float64(wireSize))
	if saved := rawSize - wireSize; saved > 0 {
		CompressionSavedBytes.Add(float64(saved))
	}
}
