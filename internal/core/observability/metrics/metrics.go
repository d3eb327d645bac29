package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Enabled   bool   `env:"SCENEBRIDGE_METRICS_ENABLED"`
	Namespace string `env:"SCENEBRIDGE_METRICS_NAMESPACE" validate:"omitempty,alphanum"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Namespace: "scenebridge",
	}
}

// Metrics collects binding-layer counters. A nil *Metrics and one built
// with Enabled=false record nothing.
type Metrics struct {
	config Config

	cacheLookups      *prometheus.CounterVec
	componentsCreated *prometheus.CounterVec
	componentsRemoved *prometheus.CounterVec
	staleAccesses     *prometheus.CounterVec
	fsmDispatches     *prometheus.CounterVec

	ticks        prometheus.Counter
	tickDuration prometheus.Histogram

	registry *prometheus.Registry
}

func New(cfg Config) *Metrics {
	if !cfg.Enabled {
		return &Metrics{config: cfg}
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "component_lookups_total",
				Help:      "Component lookups by provenance and whether the cache already held a handle",
			},
			[]string{"provenance", "result"},
		),
		componentsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "component_handles_created_total",
				Help:      "Component handles materialized in object caches",
			},
			[]string{"provenance"},
		),
		componentsRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "component_handles_removed_total",
				Help:      "Component handles evicted from object caches",
			},
			[]string{"provenance"},
		),
		staleAccesses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_handle_accesses_total",
				Help:      "Operations attempted through a destroyed handle",
			},
			[]string{"operation"},
		),
		fsmDispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fsm_dispatches_total",
				Help:      "State entry and exit notifications routed to handlers",
			},
			[]string{"kind", "handled"},
		),
		ticks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Host frames executed",
			},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Wall time spent per host frame",
				Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1},
			},
		),
	}

	registry.MustRegister(
		m.cacheLookups,
		m.componentsCreated,
		m.componentsRemoved,
		m.staleAccesses,
		m.fsmDispatches,
		m.ticks,
		m.tickDuration,
	)
	return m
}

func (m *Metrics) enabled() bool {
	return m != nil && m.registry != nil
}

// RecordLookup counts a component lookup. hit reports whether a cached
// handle was returned without materializing a new one.
func (m *Metrics) RecordLookup(provenance string, hit bool) {
	if !m.enabled() {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(provenance, result).Inc()
}

func (m *Metrics) RecordCreated(provenance string) {
	if !m.enabled() {
		return
	}
	m.componentsCreated.WithLabelValues(provenance).Inc()
}

func (m *Metrics) RecordRemoved(provenance string) {
	if !m.enabled() {
		return
	}
	m.componentsRemoved.WithLabelValues(provenance).Inc()
}

func (m *Metrics) RecordStale(operation string) {
	if !m.enabled() {
		return
	}
	m.staleAccesses.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordDispatch(kind string, handled bool) {
	if !m.enabled() {
		return
	}
	m.fsmDispatches.WithLabelValues(kind, strconv.FormatBool(handled)).Inc()
}

func (m *Metrics) RecordTick(d time.Duration) {
	if !m.enabled() {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
}

// Registry is nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if !m.enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
