package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatscope_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatscope_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	TranscriptsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatscope_transcripts_uploaded_total",
			Help: "Total transcript files uploaded",
		},
	)

	MessagesParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatscope_messages_parsed_total",
			Help: "Total chat messages parsed from uploads",
		},
	)

	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatscope_parse_duration_seconds",
			Help:    "Transcript parse duration",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatscope_analysis_duration_seconds",
			Help:    "Full statistics run duration",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatscope_search_queries_total",
			Help: "Total word search queries",
		},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatscope_ai_requests_total",
			Help: "Total AI chat requests",
		},
		[]string{"outcome"}, // "ok" or "error"
	)

	// Infrastructure metrics
	SQLiteLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatscope_sqlite_latency_seconds",
			Help:    "SQLite operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
)
