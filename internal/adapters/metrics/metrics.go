// Package metrics implements ports.Metrics with Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
)

const outcomeError = "error"

// Metrics records resolve and sync counters. A nil *Metrics records nothing.
type Metrics struct {
	resolveTotal    *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	syncActions     *prometheus.CounterVec
}

var _ ports.Metrics = (*Metrics)(nil)

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		resolveTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "swcache_resolve_total",
				Help: "Routed requests by strategy and outcome",
			},
			[]string{"strategy", "outcome"}, // outcome: network, cache, fallback, error
		),
		resolveDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swcache_resolve_duration_seconds",
				Help:    "Time to answer a routed request",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"strategy"},
		),
		syncActions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "swcache_sync_actions_total",
				Help: "Replayed offline actions by result",
			},
			[]string{"result"}, // result: success, failure
		),
	}
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics gathered from g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveResolve records one routed request.
func (m *Metrics) ObserveResolve(strategy domain.Strategy, source domain.Source, elapsed time.Duration) {
	if m == nil {
		return
	}

	outcome := string(source)
	if outcome == "" {
		outcome = outcomeError
	}
	m.resolveTotal.WithLabelValues(strategy.String(), outcome).Inc()
	m.resolveDuration.WithLabelValues(strategy.String()).Observe(elapsed.Seconds())
}

// ObserveSyncAction records the replay of one queued action.
func (m *Metrics) ObserveSyncAction(ok bool) {
	if m == nil {
		return
	}

	result := "success"
	if !ok {
		result = "failure"
	}
	m.syncActions.WithLabelValues(result).Inc()
}
