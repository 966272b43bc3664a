package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors fed by loader hooks.
type Metrics struct {
	registry *prometheus.Registry

	setsLoaded   *prometheus.CounterVec
	setsMissing  *prometheus.CounterVec
	includes     *prometheus.CounterVec
	references   prometheus.Counter
	sessions     *prometheus.CounterVec
	initDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on registry.
// A nil registry gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		setsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_param_sets_loaded_total",
				Help: "Parameter sets loaded by name",
			},
			[]string{"name"},
		),
		setsMissing: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_param_sets_missing_total",
				Help: "Requested parameter sets that were not found",
			},
			[]string{"name"},
		),
		includes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_includes_resolved_total",
				Help: "Included parameter sets resolved",
			},
			[]string{"name"},
		),
		references: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arbor_references_resolved_total",
				Help: "Cross-references replaced by their target",
			},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_sessions_started_total",
				Help: "Sessions initialized by run name",
			},
			[]string{"run"},
		),
		initDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arbor_session_init_duration_seconds",
				Help:    "Time spent loading and resolving a session",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
	}
	registry.MustRegister(m.setsLoaded, m.setsMissing, m.includes, m.references, m.sessions, m.initDuration)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnParamSetLoaded: func(ctx context.Context, e *domain.ParamSetEvent) {
			m.setsLoaded.WithLabelValues(e.Name).Inc()
		},
		OnParamSetMissing: func(ctx context.Context, e *domain.ParamSetEvent) {
			m.setsMissing.WithLabelValues(e.Name).Inc()
		},
		OnInclude: func(ctx context.Context, e *domain.ParamSetEvent) {
			m.includes.WithLabelValues(e.Name).Inc()
		},
		OnReference: func(ctx context.Context, e *domain.ReferenceEvent) {
			m.references.Inc()
		},
		OnSessionStarted: func(ctx context.Context, e *domain.SessionEvent) {
			m.sessions.WithLabelValues(e.RunName).Inc()
			m.initDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
