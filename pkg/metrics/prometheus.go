// Package metrics exposes Prometheus counters and histograms for lineup generation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every optimizer metric on a single registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	optimizationsTotal  *prometheus.CounterVec
	lineupsGenerated    prometheus.Counter
	attemptsRejected    *prometheus.CounterVec
	optimizationSeconds prometheus.Histogram
	cacheRequests       *prometheus.CounterVec
	playersImported     prometheus.Counter
	newsRefreshes       *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
}

var globalManager = NewManager()

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dfs",
		subsystem:        "optimizer",
		histogramBuckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		enabled:          true,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.optimizationsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "optimizations_total",
		Help:      "Batches run, by terminal state (filled or exhausted)",
	}, []string{"outcome"})

	m.lineupsGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lineups_generated_total",
		Help:      "Lineups accepted across all batches",
	})

	m.attemptsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attempts_rejected_total",
		Help:      "Build attempts that produced no lineup, by reason",
	}, []string{"reason"})

	m.optimizationSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "optimization_duration_seconds",
		Help:      "Wall time of one batch",
		Buckets:   m.histogramBuckets,
	})

	m.cacheRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "result_cache_requests_total",
		Help:      "Result cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	m.playersImported = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_imported_total",
		Help:      "Players parsed from uploaded pools",
	})

	m.newsRefreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "news_refreshes_total",
		Help:      "Scheduled news refresh runs by status",
	}, []string{"status"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})
}

// Handler serves the manager's registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) RecordOptimization(exhausted bool, lineups int, seconds float64, rejections map[string]int) {
	if !m.enabled {
		return
	}
	outcome := "filled"
	if exhausted {
		outcome = "exhausted"
	}
	m.optimizationsTotal.WithLabelValues(outcome).Inc()
	m.lineupsGenerated.Add(float64(lineups))
	m.optimizationSeconds.Observe(seconds)
	for reason, count := range rejections {
		m.attemptsRejected.WithLabelValues(reason).Add(float64(count))
	}
}

func (m *Manager) RecordCache(result string) {
	if m.enabled {
		m.cacheRequests.WithLabelValues(result).Inc()
	}
}

func (m *Manager) RecordPlayersImported(n int) {
	if m.enabled {
		m.playersImported.Add(float64(n))
	}
}

func (m *Manager) RecordNewsRefresh(status string) {
	if m.enabled {
		m.newsRefreshes.WithLabelValues(status).Inc()
	}
}

func (m *Manager) RecordHTTPRequest(route, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	}
}

// Package-level helpers record against the global manager.

func Global() *Manager { return globalManager }

func Handler() http.Handler { return globalManager.Handler() }

func RecordOptimization(exhausted bool, lineups int, seconds float64, rejections map[string]int) {
	globalManager.RecordOptimization(exhausted, lineups, seconds, rejections)
}

func RecordCache(result string) { globalManager.RecordCache(result) }

func RecordPlayersImported(n int) { globalManager.RecordPlayersImported(n) }

func RecordNewsRefresh(status string) { globalManager.RecordNewsRefresh(status) }

func RecordHTTPRequest(route, method, statusCode string) {
	globalManager.RecordHTTPRequest(route, method, statusCode)
}
