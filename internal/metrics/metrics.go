package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "molgest_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "molgest_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	Parses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "molgest_parses_total",
			Help: "Total number of notations parsed, by result",
		},
		[]string{"result"},
	)

	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "molgest_parse_duration_seconds",
			Help:    "Time to parse and serialize one notation",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)

	Jobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "molgest_jobs_total",
			Help: "Total number of ingest jobs finished, by final status",
		},
		[]string{"status"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "molgest_queue_depth",
			Help: "Number of ingest jobs waiting for a worker",
		},
	)
)

// Parse results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
)
