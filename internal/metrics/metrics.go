// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the HTTP layer and services record into.
type Recorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordQuestionAsked()
	RecordAICompletion(provider string, duration time.Duration)
	RecordAIFallback(reason string)
	RecordAuthEvent(event, outcome string)
}

type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	questions    prometheus.Counter
	aiLatency    *prometheus.HistogramVec
	aiFallbacks  *prometheus.CounterVec
	authEvents   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "askdesk_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "askdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		questions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "askdesk_questions_asked_total",
			Help: "Questions answered and persisted.",
		}),
		aiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "askdesk_ai_completion_duration_seconds",
			Help:    "Latency of successful AI provider completions.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"provider"}),
		aiFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "askdesk_ai_fallbacks_total",
			Help: "AI calls that resolved to the fallback answer, by reason.",
		}, []string{"reason"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "askdesk_auth_events_total",
			Help: "Authentication events by type and outcome.",
		}, []string{"event", "outcome"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.questions,
		c.aiLatency,
		c.aiFallbacks,
		c.authEvents,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordQuestionAsked() {
	c.questions.Inc()
}

func (c *Collector) RecordAICompletion(provider string, duration time.Duration) {
	c.aiLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

func (c *Collector) RecordAIFallback(reason string) {
	c.aiFallbacks.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordAuthEvent(event, outcome string) {
	c.authEvents.WithLabelValues(event, outcome).Inc()
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used in tests and when metrics are disabled.
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}

func (Nop) RecordQuestionAsked() {}

func (Nop) RecordAICompletion(string, time.Duration) {}

func (Nop) RecordAIFallback(string) {}

func (Nop) RecordAuthEvent(string, string) {}
