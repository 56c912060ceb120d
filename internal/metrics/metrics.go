// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "team_builder"

// Generation outcomes
const (
	OutcomeSuccess            = "success"
	OutcomeRateLimited        = "rate_limited"
	OutcomeLimiterUnavailable = "limiter_unavailable"
	OutcomeInvalid            = "invalid"
	OutcomeUpstreamQuota      = "upstream_quota"
	OutcomeConfiguration      = "configuration"
	OutcomeParse              = "parse"
	OutcomeFailed             = "failed"
)

// Limiter decisions
const (
	DecisionAllowed = "allowed"
	DecisionDenied  = "denied"
	DecisionError   = "error"
)

// Recorder owns a registry and the application collectors. All methods are safe on a nil Recorder.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	generations        *prometheus.CounterVec
	limiterDecisions   *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry, including Go and process collectors
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "team_generations_total",
			Help:      "Team generation requests by outcome.",
		}, []string{"outcome"}),
		limiterDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter decisions.",
		}, []string{"decision"}),
		completionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "AI provider completion latency by result.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.generations,
		r.limiterDecisions,
		r.completionDuration,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordHTTPRequest tracks basic HTTP metrics. route is the matched route template, not the raw path.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGeneration counts a finished team generation request
func (r *Recorder) RecordGeneration(outcome string) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(outcome).Inc()
}

// RecordLimiterDecision counts one rate limiter check
func (r *Recorder) RecordLimiterDecision(decision string) {
	if r == nil {
		return
	}
	r.limiterDecisions.WithLabelValues(decision).Inc()
}

// RecordCompletion observes one provider call
func (r *Recorder) RecordCompletion(duration time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.completionDuration.WithLabelValues(result).Observe(duration.Seconds())
}
