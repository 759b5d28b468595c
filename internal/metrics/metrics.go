// Package metrics provides Prometheus metrics for the frogshop console.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes recorded by ObserveSearch.
const (
	SearchHit   = "hit"
	SearchMiss  = "miss"
	SearchError = "error"
)

// Manager owns every collector. A nil *Manager is valid and records nothing,
// so components can take one unconditionally.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	notificationsShown *prometheus.CounterVec
	notificationsLive  prometheus.Gauge
	modalOpens         *prometheus.CounterVec
	modalsOpen         prometheus.Gauge
	upsellSearches     *prometheus.CounterVec
	upsellRankLatency  prometheus.Histogram
	upsellResults      prometheus.Histogram
	upsellClicks       prometheus.Counter
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets the registry the collectors are registered on.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a Manager on a private registry unless WithRegistry is
// given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "frogshop",
		histogramBuckets: prometheus.DefBuckets,
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

	m.notificationsShown = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "notify",
		Name:      "shown_total",
		Help:      "Notifications shown, by kind",
	}, []string{"kind"})

	m.notificationsLive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "notify",
		Name:      "live",
		Help:      "Notifications currently in the live store",
	})

	m.modalOpens = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "modal",
		Name:      "opens_total",
		Help:      "Modal open transitions, by modal key",
	}, []string{"key"})

	m.modalsOpen = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "modal",
		Name:      "open",
		Help:      "Modals currently open",
	})

	m.upsellSearches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "upsell",
		Name:      "searches_total",
		Help:      "Keyword searches issued by the upsell engine, by cache outcome",
	}, []string{"result"})

	m.upsellRankLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "upsell",
		Name:      "rank_duration_seconds",
		Help:      "Time to derive keywords, search, score and rank upsells",
		Buckets:   m.histogramBuckets,
	})

	m.upsellResults = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "upsell",
		Name:      "results",
		Help:      "Number of recommendations returned per request",
		Buckets:   prometheus.LinearBuckets(0, 1, 9),
	})

	m.upsellClicks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "upsell",
		Name:      "clicks_total",
		Help:      "Recorded recommendation clicks",
	})
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) NotificationShown(kind string) {
	if m == nil {
		return
	}
	m.notificationsShown.WithLabelValues(kind).Inc()
}

func (m *Manager) SetNotificationsLive(n int) {
	if m == nil {
		return
	}
	m.notificationsLive.Set(float64(n))
}

func (m *Manager) ModalOpened(key string) {
	if m == nil {
		return
	}
	m.modalOpens.WithLabelValues(key).Inc()
}

func (m *Manager) SetModalsOpen(n int) {
	if m == nil {
		return
	}
	m.modalsOpen.Set(float64(n))
}

// SearchesTotal exposes the keyword search counter labelled by outcome.
func (m *Manager) SearchesTotal() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.upsellSearches
}

// ObserveSearch records one keyword search with outcome SearchHit, SearchMiss
// or SearchError.
func (m *Manager) ObserveSearch(result string) {
	if m == nil {
		return
	}
	m.upsellSearches.WithLabelValues(result).Inc()
}

func (m *Manager) ObserveRank(d time.Duration, results int) {
	if m == nil {
		return
	}
	m.upsellRankLatency.Observe(d.Seconds())
	m.upsellResults.Observe(float64(results))
}

func (m *Manager) UpsellClicked() {
	if m == nil {
		return
	}
	m.upsellClicks.Inc()
}
