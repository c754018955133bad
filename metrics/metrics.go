// Package metrics holds the Prometheus collectors for the pay structure
// server. Each Metrics value owns its registry so tests and multiple
// servers in one process do not collide.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/pay-structure/grading"
)

const namespace = "paystructure"

type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	structuresGenerated *prometheus.CounterVec
	gradesGenerated     *prometheus.HistogramVec
	warningsTotal       *prometheus.CounterVec
	factorUpdates       prometheus.Counter
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		structuresGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structures_generated_total",
			Help:      "Total number of generated pay structures by evaluation method.",
		}, []string{"method"}),
		gradesGenerated: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "structure_grades",
			Help:      "Number of grades per generated structure.",
			Buckets:   []float64{1, 2, 3, 5, 8, 10, 15, 20, 30},
		}, []string{"method"}),
		warningsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structure_warnings_total",
			Help:      "Total number of structure warnings reported, by code.",
		}, []string{"code"}),
		factorUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "factor_map_updates_total",
			Help:      "Total number of factor map updates that rescored jobs.",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StructureGenerated records a generation and the warnings it produced.
func (m *Metrics) StructureGenerated(method grading.Method, grades []grading.Grade, warnings []grading.Warning) {
	m.structuresGenerated.WithLabelValues(string(method)).Inc()
	m.gradesGenerated.WithLabelValues(string(method)).Observe(float64(len(grades)))
	m.ObserveWarnings(warnings)
}

func (m *Metrics) ObserveWarnings(warnings []grading.Warning) {
	for _, w := range warnings {
		m.warningsTotal.WithLabelValues(string(w.Code)).Inc()
	}
}

func (m *Metrics) FactorMapUpdated() {
	m.factorUpdates.Inc()
}
