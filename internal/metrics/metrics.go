package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Insight outcomes
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeInvalid  = "invalid"
)

var (
	// InsightRequests counts insight calls by kind and outcome
	InsightRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emrsvc_insight_requests_total",
		Help: "Generative insight requests by kind and outcome.",
	}, []string{"kind", "outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emrsvc_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "emrsvc_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AuthFailures counts rejected guard checks per auth context
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emrsvc_auth_failures_total",
		Help: "Requests rejected by a route guard.",
	}, []string{"context"})
)
