package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "idscan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	classifyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idscan_classify_requests_total",
			Help: "Total number of classification requests",
		},
		[]string{"status"},
	)

	classifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "idscan_classify_duration_seconds",
			Help:    "End-to-end classification duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
	)

	documentsDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "idscan_documents_detected",
			Help:    "Identity documents detected per upload",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "idscan_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "idscan_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idscan_websocket_messages_total",
			Help: "Total WebSocket messages by direction",
		},
		[]string{"direction"},
	)
)
