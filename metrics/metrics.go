// Package metrics provides Prometheus instrumentation for the bookings API.
// It exports the request metrics scraped by the cluster Prometheus:
//   - http_requests_total: Counter with method, route, and status labels
//   - http_request_duration_seconds: Histogram with the same label set
//   - http_requests_in_flight: Gauge for concurrent requests
//   - rate_limiter_buckets_total: Gauge for live rate limiter buckets
//
// All instruments live in an explicitly constructed registry owned by the
// Recorder, so tests and multiple server instances never collide on the
// default global registry. Every exported series carries a constant
// "service" label identifying the owning process.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBuckets are the histogram boundaries used when none are configured.
// They skew towards the low millisecond range since all handlers serve from
// memory.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// Recorder owns the metric registry and the HTTP request instruments.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	// RateLimiterBuckets tracks the number of live per-IP token buckets.
	// Updated by the scheduler, not by the request path.
	RateLimiterBuckets prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry. The service name is
// attached as a constant label to every series. If buckets is empty,
// DefaultBuckets are used.
func NewRecorder(service string, buckets []float64) *Recorder {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}

	registry := prometheus.NewRegistry()
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"service": service}, registry)

	r := &Recorder{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: buckets,
			},
			[]string{"method", "route", "status"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current in-flight requests",
			},
		),
		RateLimiterBuckets: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_limiter_buckets_total",
				Help: "Total number of rate limiter buckets (IPs seen recently)",
			},
		),
	}

	reg.MustRegister(r.requestsTotal)
	reg.MustRegister(r.requestDuration)
	reg.MustRegister(r.inFlight)
	reg.MustRegister(r.RateLimiterBuckets)
	reg.MustRegister(collectors.NewGoCollector())

	return r
}

// Registry exposes the underlying registry for additional collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns the scrape endpoint handler. Scrapes take a snapshot of
// the registry and are safe to run concurrently with in-flight requests.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
