// Package metrics holds the Prometheus collectors for ingestion and delivery.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "indicacoes"

// Fetch outcomes
const (
	OutcomeOK          = "ok"
	OutcomeTimeout     = "timeout"
	OutcomePortalError = "portal_error"
	OutcomeFetchError  = "fetch_error"
)

// Metrics groups every collector on a private registry
type Metrics struct {
	registry *prometheus.Registry

	portalFetches   *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	aggregations    *prometheus.CounterVec
	aggregationDur  prometheus.Histogram
	matters         prometheus.Gauge
	pages           prometheus.Gauge
	rowAnomalies    prometheus.Counter
	annotationCache *prometheus.CounterVec
	annotationErrs  prometheus.Counter
	httpRequests    *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		portalFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "portal_fetches_total",
			Help:      "Listing page requests to the portal by outcome",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "portal_fetch_duration_seconds",
			Help:      "Time spent fetching one listing page",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		}),
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Full ingestion runs by result",
		}, []string{"result"}),
		aggregationDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent on a full ingestion run",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		matters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matters",
			Help:      "Matters in the last successful snapshot",
		}),
		pages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "portal_pages",
			Help:      "Listing pages discovered in the last run",
		}),
		rowAnomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_anomalies_total",
			Help:      "Result rows skipped by the parser",
		}),
		annotationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotation_cache_total",
			Help:      "AI annotation cache lookups by result",
		}, []string{"result"}),
		annotationErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotation_errors_total",
			Help:      "AI annotation failures that fell back to heuristics",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Delivery requests by path and status code",
		}, []string{"path", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.portalFetches, m.fetchDuration,
		m.aggregations, m.aggregationDur, m.matters, m.pages, m.rowAnomalies,
		m.annotationCache, m.annotationErrs,
		m.httpRequests,
	)

	return m
}

// Registry exposes the underlying registry (tests, custom exporters)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one page request
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.portalFetches.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// ObserveAggregation records one ingestion run
func (m *Metrics) ObserveAggregation(err error, pages, matters int, d time.Duration) {
	if m == nil {
		return
	}
	m.aggregationDur.Observe(d.Seconds())
	if err != nil {
		m.aggregations.WithLabelValues("failure").Inc()
		return
	}
	m.aggregations.WithLabelValues("success").Inc()
	m.pages.Set(float64(pages))
	m.matters.Set(float64(matters))
}

// AddRowAnomalies counts skipped rows
func (m *Metrics) AddRowAnomalies(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowAnomalies.Add(float64(n))
}

// ObserveAnnotationCache records a cache lookup
func (m *Metrics) ObserveAnnotationCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.annotationCache.WithLabelValues("hit").Inc()
		return
	}
	m.annotationCache.WithLabelValues("miss").Inc()
}

// IncAnnotationErrors counts an AI annotation failure
func (m *Metrics) IncAnnotationErrors() {
	if m == nil {
		return
	}
	m.annotationErrs.Inc()
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(path string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}
