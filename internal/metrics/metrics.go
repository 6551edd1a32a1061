package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "herdboard"

// Metrics groups the collectors shared by the dashboard services. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	cacheLookups        *prometheus.CounterVec
	mutations           *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
}

// New builds a Metrics instance backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups partitioned by key family and result.",
		}, []string{"family", "result"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "mutations_total",
			Help:      "Animal record mutations partitioned by operation and outcome.",
		}, []string{"op", "outcome"}),
		persistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persistence",
			Name:      "failures_total",
			Help:      "Persistence gateway failures partitioned by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(
		m.cacheLookups,
		m.mutations,
		m.persistenceFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CacheLookup records a cache hit or miss for key.
func (m *Metrics) CacheLookup(key string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(KeyFamily(key), result).Inc()
}

// Mutation records an animal mutation.
func (m *Metrics) Mutation(op string, applied bool) {
	if m == nil {
		return
	}
	outcome := "applied"
	if !applied {
		outcome = "not_found"
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}

// PersistenceFailure records a failed gateway operation.
func (m *Metrics) PersistenceFailure(op string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(op).Inc()
}

// KeyFamily collapses parameterised cache keys ("report_daily_2024-01-15")
// into a bounded label value ("report_daily").
func KeyFamily(key string) string {
	if !strings.HasPrefix(key, "report_") {
		return key
	}
	parts := strings.SplitN(key, "_", 3)
	if len(parts) < 2 {
		return key
	}
	return parts[0] + "_" + parts[1]
}
