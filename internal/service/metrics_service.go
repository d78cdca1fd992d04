package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
// A nil *MetricsService is valid and records nothing.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	cacheLatency        prometheus.Observer
	cacheWrite          prometheus.Observer
	cacheHitRatio       prometheus.Gauge
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	applicationsCreated prometheus.Counter
	statusUpdates       *prometheus.CounterVec
	eligibilityChecks   *prometheus.CounterVec
	exportsGenerated    *prometheus.CounterVec
	mailFailures        prometheus.Counter

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	createdCount         uint64
	statusUpdateCount    uint64
	exportCount          uint64
}

// NewMetricsService registers core Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache set operations",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		applicationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "applications_created_total",
			Help: "Applications submitted by students",
		}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "application_status_updates_total",
			Help: "Application status changes by target status",
		}, []string{"status"}),
		eligibilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eligibility_checks_total",
			Help: "Eligibility evaluations by outcome",
		}, []string{"result"}),
		exportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exports_generated_total",
			Help: "Application exports by format",
		}, []string{"format"}),
		mailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mail_delivery_failures_total",
			Help: "Mails dropped after exhausting retries",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.cacheLatency.(prometheus.Collector), m.cacheWrite.(prometheus.Collector),
		m.cacheHitRatio, m.cacheHits, m.cacheMisses, m.applicationsCreated, m.statusUpdates, m.eligibilityChecks,
		m.exportsGenerated, m.mailFailures, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ApplicationCreated counts a successful apply.
func (m *MetricsService) ApplicationCreated() {
	if m == nil {
		return
	}
	m.applicationsCreated.Inc()
	atomic.AddUint64(&m.createdCount, 1)
}

// StatusUpdated counts one applied status change.
func (m *MetricsService) StatusUpdated(status models.ApplicationStatus) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(string(status)).Inc()
	atomic.AddUint64(&m.statusUpdateCount, 1)
}

// EligibilityChecked counts an evaluation outcome.
func (m *MetricsService) EligibilityChecked(eligible bool) {
	if m == nil {
		return
	}
	result := "ineligible"
	if eligible {
		result = "eligible"
	}
	m.eligibilityChecks.WithLabelValues(result).Inc()
}

// ExportGenerated counts a produced export file.
func (m *MetricsService) ExportGenerated(format string) {
	if m == nil {
		return
	}
	m.exportsGenerated.WithLabelValues(format).Inc()
	atomic.AddUint64(&m.exportCount, 1)
}

// MailDropped counts a mail that exhausted its retries.
func (m *MetricsService) MailDropped() {
	if m == nil {
		return
	}
	m.mailFailures.Inc()
}

// Snapshot returns aggregated counters for the admin system endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{GeneratedAt: time.Now().UTC()}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ApplicationsCreated:      atomic.LoadUint64(&m.createdCount),
		StatusUpdates:            atomic.LoadUint64(&m.statusUpdateCount),
		ExportsGenerated:         atomic.LoadUint64(&m.exportCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
