package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vtt_translator",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vtt_translator",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   []float64{0.01, 0.05, 0.25, 1, 5, 15, 60, 180, 600},
	}, []string{"route", "method"})

	TranslationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vtt_translator",
		Name:      "translations_total",
		Help:      "Per-language document translations by engine and outcome.",
	}, []string{"engine", "language", "outcome"})

	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vtt_translator",
		Name:      "provider_calls_total",
		Help:      "Outbound translation provider calls by engine and outcome.",
	}, []string{"engine", "outcome"})

	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vtt_translator",
		Name:      "provider_call_duration_seconds",
		Help:      "Outbound translation provider call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"engine"})
)

// Outcome labels
const (
	OutcomeOK    = "ok"
	OutcomeRetry = "retry"
	OutcomeError = "error"
)
