// Package metrics exposes Prometheus metrics for Daybook.
//
// The Collector owns a private registry and pre-registered metric families
// covering the three observable surfaces: HTTP request outcomes, admission
// decisions, and reflection job outcomes. Components record through typed
// methods rather than touching metric vectors directly.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the collector.
type Config struct {
	// Enabled disables all recording when false; the handler still serves
	// an empty registry.
	Enabled bool

	// Namespace prefixes every metric name. Defaults to "daybook".
	Namespace string
}

// Collector registers and records all Daybook metrics.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	admissionsTotal *prometheus.CounterVec

	reflectionsTotal    *prometheus.CounterVec
	reflectionDuration  prometheus.Histogram
	reflectionPromptLen prometheus.Histogram
}

// NewCollector creates a collector with its own registry. Pass nil to use a
// fresh registry; sharing one across collectors will panic on duplicate
// registration, which is intended.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "daybook"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "HTTP requests handled, by route and status class",
			},
			[]string{"route", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request handling duration in seconds",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"route"},
		),

		admissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "admission_decisions_total",
				Help:      "Admission gate decisions, by rule and decision",
			},
			[]string{"rule", "decision"},
		),

		reflectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "reflection_outcomes_total",
				Help:      "Weekly reflection job outcomes, by status and reason",
			},
			[]string{"status", "reason"},
		),

		reflectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "reflection_duration_seconds",
				Help:      "End-to-end duration of executed reflection jobs",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		reflectionPromptLen: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "reflection_prompt_bytes",
				Help:      "Size of the capped prompt sent to the generation provider",
				Buckets:   prometheus.ExponentialBuckets(64, 2, 8), // 64B to 8KB
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.admissionsTotal,
		c.reflectionsTotal,
		c.reflectionDuration,
		c.reflectionPromptLen,
	)

	return c
}

// RecordRequest records one handled HTTP request.
func (c *Collector) RecordRequest(route, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestsTotal.WithLabelValues(route, status).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordAdmission records one gate decision.
func (c *Collector) RecordAdmission(rule string, allowed bool) {
	if !c.config.Enabled {
		return
	}
	decision := "allowed"
	if !allowed {
		decision = "rejected"
	}
	c.admissionsTotal.WithLabelValues(rule, decision).Inc()
}

// RecordReflection records one coordinator outcome. reason is empty for
// cached and executed outcomes.
func (c *Collector) RecordReflection(status, reason string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.reflectionsTotal.WithLabelValues(status, reason).Inc()
	if status == "executed" {
		c.reflectionDuration.Observe(duration.Seconds())
	}
}

// RecordPromptSize records the byte size of a capped generation prompt.
func (c *Collector) RecordPromptSize(bytes int) {
	if !c.config.Enabled {
		return
	}
	c.reflectionPromptLen.Observe(float64(bytes))
}

// Handler serves the registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
