package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Loader Metrics
	LoadRecordsTotal prometheus.Counter
	LoadDuration     prometheus.Histogram
	LoadErrorsTotal  *prometheus.CounterVec
	LoadCacheTotal   *prometheus.CounterVec

	// Analysis Metrics
	SimulationsTotal prometheus.Counter
	CombinedFactor   prometheus.Histogram
	ExportsTotal     *prometheus.CounterVec
	HighAQIHours     prometheus.Gauge

	// Processing time by operation
	ProcessingTimeMS *prometheus.HistogramVec
}

// NewCollector creates a collector registered on the default prometheus registry
func NewCollector(namespace string) *Collector {
	return NewCollectorWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector registered on reg.
// Tests pass a fresh prometheus.NewRegistry() so collectors never collide.
func NewCollectorWithRegistry(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		LoadRecordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_records_total",
				Help:      "Total number of air-quality readings loaded",
			},
		),

		LoadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Duration of dataset loads in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),

		LoadErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_errors_total",
				Help:      "Total number of load failures by type",
			},
			[]string{"error_type"},
		),

		LoadCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_cache_lookups_total",
				Help:      "Loader cache lookups by result",
			},
			[]string{"result"}, // "hit", "miss", "invalidated"
		),

		SimulationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scenario_simulations_total",
				Help:      "Total number of scenario simulations",
			},
		),

		CombinedFactor: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scenario_combined_factor",
				Help:      "Combined mitigation factor requested by simulations",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
		),

		ExportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Adjusted-series exports by format and status",
			},
			[]string{"format", "status"},
		),

		HighAQIHours: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "high_aqi_hours",
				Help:      "Calendar hours above the severity threshold in the last hourly analysis",
			},
		),

		ProcessingTimeMS: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "processing_time_milliseconds",
				Help:      "Processing time in milliseconds by operation",
				Buckets:   []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
			},
			[]string{"operation"},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// ObserveProcessing records an operation's elapsed milliseconds
func (c *Collector) ObserveProcessing(operation string, start time.Time) {
	c.ProcessingTimeMS.WithLabelValues(operation).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordLoadError increments load error counter
func (c *Collector) RecordLoadError(errorType string) {
	c.LoadErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordCacheLookup counts a loader cache hit, miss or invalidation
func (c *Collector) RecordCacheLookup(result string) {
	c.LoadCacheTotal.WithLabelValues(result).Inc()
}

// RecordExport counts an export attempt
func (c *Collector) RecordExport(format, status string) {
	c.ExportsTotal.WithLabelValues(format, status).Inc()
}
