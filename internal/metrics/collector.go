// Package metrics exposes Prometheus instrumentation for the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"imagegw/internal/gateway"
)

// Collector holds the gateway metric vectors on its own registry.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	requestsTotal     *prometheus.CounterVec
	stageFailures     *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	fetchDuration     prometheus.Histogram
	fetchedBytes      prometheus.Histogram
}

// NewCollector registers all metrics under namespace on a fresh registry.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{registry: reg}

	c.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	c.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Gateway operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
	c.stageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Failed requests by pipeline stage and error kind",
		},
		[]string{"stage", "kind"},
	)
	c.upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Provider call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "endpoint"},
	)
	c.fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Result image fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
	c.fetchedBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetched_bytes",
			Help:      "Size of fetched result images in bytes",
			Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 8),
		},
	)

	reg.MustRegister(
		c.httpRequestsTotal,
		c.requestsTotal,
		c.stageFailures,
		c.upstreamDuration,
		c.fetchDuration,
		c.fetchedBytes,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest counts one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, route string, status int) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (c *Collector) ObserveRequest(operation, outcome string) {
	c.requestsTotal.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) ObserveStageFailure(stage gateway.Stage, kind gateway.Kind) {
	c.stageFailures.WithLabelValues(string(stage), kind.String()).Inc()
}

func (c *Collector) ObserveUpstream(provider gateway.Provider, endpoint string, took time.Duration) {
	c.upstreamDuration.WithLabelValues(string(provider), endpoint).Observe(took.Seconds())
}

func (c *Collector) ObserveFetch(took time.Duration, size int) {
	c.fetchDuration.Observe(took.Seconds())
	c.fetchedBytes.Observe(float64(size))
}

var _ gateway.Recorder = (*Collector)(nil)
