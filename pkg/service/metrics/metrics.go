package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/taproom/pkg/domain/model"
)

const namespace = "taproom"

// Collector holds the Prometheus metrics of the service. A nil *Collector is
// valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	ingestBatches  *prometheus.CounterVec
	ingestDuration prometheus.Histogram
	fetchedRecords prometheus.Counter
	persistResults *prometheus.CounterVec
	filterQueries  *prometheus.CounterVec
}

// New creates a collector on its own registry, including Go runtime and
// process collectors
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ingestBatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_batches_total",
				Help:      "Total number of ingestion batches by result",
			},
			[]string{"result"},
		),
		ingestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Duration of ingestion batches in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		fetchedRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetched_records_total",
				Help:      "Total number of records fetched from the generator",
			},
		),
		persistResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_results_total",
				Help:      "Total number of persisted records by status",
			},
			[]string{"status"},
		),
		filterQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filter_queries_total",
				Help:      "Total number of filtered queries by dimension and filter source",
			},
			[]string{"dimension", "source"},
		),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.ingestBatches,
		c.ingestDuration,
		c.fetchedRecords,
		c.persistResults,
		c.filterQueries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request. route is the matched route
// pattern, not the raw path.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveIngest records the end of an ingestion batch
func (c *Collector) ObserveIngest(err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.ingestBatches.WithLabelValues(result).Inc()
	c.ingestDuration.Observe(elapsed.Seconds())
}

// AddFetched counts records fetched from the generator
func (c *Collector) AddFetched(n int) {
	if c == nil {
		return
	}
	c.fetchedRecords.Add(float64(n))
}

// ObservePersist counts one persist outcome
func (c *Collector) ObservePersist(status model.PersistStatus) {
	if c == nil {
		return
	}
	c.persistResults.WithLabelValues(string(status)).Inc()
}

// ObserveFilter counts one resolved filter
func (c *Collector) ObserveFilter(filter model.Filter) {
	if c == nil {
		return
	}
	c.filterQueries.WithLabelValues(filter.Dimension.String(), string(filter.Source)).Inc()
}
