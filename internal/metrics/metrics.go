// Package metrics exposes Prometheus counters and histograms for request,
// operation and resolver activity, fed from the event bus.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventbus "github.com/aviodev/graphlet/internal/eventbus"
	events "github.com/aviodev/graphlet/internal/events"
)

// Metrics holds the collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationErrors   prometheus.Counter
	resolves          *prometheus.CounterVec
	resolveDuration   *prometheus.HistogramVec
}

// New builds the collector set on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphlet_http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphlet_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphlet_operations_total",
			Help: "GraphQL operations executed, by operation type.",
		}, []string{"type"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphlet_operation_duration_seconds",
			Help:    "GraphQL operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		operationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphlet_operation_errors_total",
			Help: "Field errors accumulated across all operations.",
		}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphlet_resolves_total",
			Help: "Field resolutions, by parent type and outcome.",
		}, []string{"object", "outcome"}),
		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphlet_resolve_duration_seconds",
			Help:    "Field resolver latency.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"object"}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.operations,
		m.operationDuration,
		m.operationErrors,
		m.resolves,
		m.resolveDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Register attaches event bus subscribers feeding the collectors.
func (m *Metrics) Register() {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		m.httpRequests.WithLabelValues(e.Request.Method, strconv.Itoa(e.Status)).Inc()
		m.httpDuration.WithLabelValues(e.Request.Method).Observe(e.Duration.Seconds())
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		opType := e.OperationType
		if opType == "" {
			opType = "query"
		}
		m.operations.WithLabelValues(opType).Inc()
		m.operationDuration.WithLabelValues(opType).Observe(e.Duration.Seconds())
		m.operationErrors.Add(float64(len(e.Errors)))
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
		outcome := "ok"
		if e.Err != nil {
			outcome = "error"
		}
		m.resolves.WithLabelValues(e.ObjectType, outcome).Inc()
		m.resolveDuration.WithLabelValues(e.ObjectType).Observe(e.Duration.Seconds())
	})
}
