package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects client and server counters. Every counter is kept as an
// atomic for the JSON snapshot and mirrored into a private Prometheus registry.
type Metrics struct {
	// API metrics
	apiRequests     atomic.Int64
	apiErrors       atomic.Int64
	apiLatencySum   atomic.Int64
	apiLatencyCount atomic.Int64

	// Record metrics
	recordsNormalized atomic.Int64

	// HTTP metrics
	httpRequests atomic.Int64
	httpErrors   atomic.Int64

	registry       *prometheus.Registry
	promAPIReqs    prometheus.Counter
	promAPIErrs    prometheus.Counter
	promAPILatency prometheus.Histogram
	promRecords    prometheus.Counter
	promHTTPReqs   *prometheus.CounterVec
	promHTTPDur    *prometheus.HistogramVec

	startTime time.Time
}

// NewMetrics creates a new metrics collector with its own registry
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
		registry:  prometheus.NewRegistry(),
		promAPIReqs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skywatch_opensky_requests_total",
			Help: "Total number of requests sent to the OpenSky API.",
		}),
		promAPIErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skywatch_opensky_errors_total",
			Help: "Total number of failed OpenSky API requests.",
		}),
		promAPILatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skywatch_opensky_request_duration_seconds",
			Help:    "OpenSky API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		promRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skywatch_flight_records_total",
			Help: "Total number of state vectors normalized into flight records.",
		}),
		promHTTPReqs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skywatch_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"path", "method", "code"},
		),
		promHTTPDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skywatch_http_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}

	m.registry.MustRegister(
		m.promAPIReqs,
		m.promAPIErrs,
		m.promAPILatency,
		m.promRecords,
		m.promHTTPReqs,
		m.promHTTPDur,
	)

	return m
}

// Handler returns the Prometheus metrics HTTP handler for this collector.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// API metrics methods

func (m *Metrics) IncrementAPIRequests() {
	m.apiRequests.Add(1)
	m.promAPIReqs.Inc()
}

func (m *Metrics) IncrementAPIErrors() {
	m.apiErrors.Add(1)
	m.promAPIErrs.Inc()
}

func (m *Metrics) RecordAPILatency(latency time.Duration) {
	m.apiLatencySum.Add(latency.Milliseconds())
	m.apiLatencyCount.Add(1)
	m.promAPILatency.Observe(latency.Seconds())
}

func (m *Metrics) GetAPIRequests() int64 {
	return m.apiRequests.Load()
}

func (m *Metrics) GetAPIErrors() int64 {
	return m.apiErrors.Load()
}

func (m *Metrics) GetAPIAverageLatency() float64 {
	count := m.apiLatencyCount.Load()
	if count == 0 {
		return 0
	}
	sum := m.apiLatencySum.Load()
	return float64(sum) / float64(count)
}

// Record metrics methods

func (m *Metrics) AddRecordsNormalized(n int) {
	m.recordsNormalized.Add(int64(n))
	m.promRecords.Add(float64(n))
}

func (m *Metrics) GetRecordsNormalized() int64 {
	return m.recordsNormalized.Load()
}

// HTTP metrics methods

func (m *Metrics) IncrementHTTPRequests() {
	m.httpRequests.Add(1)
}

func (m *Metrics) IncrementHTTPErrors() {
	m.httpErrors.Add(1)
}

func (m *Metrics) GetHTTPRequests() int64 {
	return m.httpRequests.Load()
}

func (m *Metrics) GetHTTPErrors() int64 {
	return m.httpErrors.Load()
}

// General metrics methods

func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.startTime)
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count, errors and duration for each request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.IncrementHTTPRequests()
		if rw.statusCode >= http.StatusBadRequest {
			m.IncrementHTTPErrors()
		}

		path := routePattern(r)
		m.promHTTPReqs.WithLabelValues(path, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		m.promHTTPDur.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

// routePattern labels a request by its matched chi route so unknown paths share one series
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Snapshot represents a point-in-time snapshot of all metrics
type Snapshot struct {
	// API metrics
	APIRequests   int64   `json:"api_requests"`
	APIErrors     int64   `json:"api_errors"`
	APIAvgLatency float64 `json:"api_avg_latency_ms"`

	// Record metrics
	RecordsNormalized int64 `json:"records_normalized"`

	// HTTP metrics
	HTTPRequests int64 `json:"http_requests"`
	HTTPErrors   int64 `json:"http_errors"`

	// System metrics
	UptimeSeconds int64 `json:"uptime_seconds"`
	Timestamp     int64 `json:"timestamp"`
}

// GetSnapshot returns a snapshot of all current metrics
func (m *Metrics) GetSnapshot() *Snapshot {
	return &Snapshot{
		APIRequests:       m.GetAPIRequests(),
		APIErrors:         m.GetAPIErrors(),
		APIAvgLatency:     m.GetAPIAverageLatency(),
		RecordsNormalized: m.GetRecordsNormalized(),
		HTTPRequests:      m.GetHTTPRequests(),
		HTTPErrors:        m.GetHTTPErrors(),
		UptimeSeconds:     int64(m.GetUptime().Seconds()),
		Timestamp:         time.Now().Unix(),
	}
}
