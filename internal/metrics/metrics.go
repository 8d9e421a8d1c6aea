// Package metrics exposes housekeeper activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"housekeeper/internal/housekeeper"
)

const namespace = "housekeeper"

// Source is the read-only view of a scheduler the gauges sample on scrape.
type Source interface {
	Heartbeat() int64
	Len() int
}

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the collectors. src may be nil, in which case the heartbeat
// and task gauges are not exported.
func New(src Source) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_runs_total",
			Help:      "Task executions by outcome.",
		}, []string{"task", "kind", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Task execution time.",
			Buckets:   []float64{.001, .01, .1, .5, 1, 5, 30, 120},
		}, []string{"task"}),
	}
	m.registry.MustRegister(
		m.runs,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if src != nil {
		m.registry.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "heartbeat",
				Help:      "Current heartbeat counter.",
			}, func() float64 { return float64(src.Heartbeat()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tasks",
				Help:      "Registered tasks.",
			}, func() float64 { return float64(src.Len()) }),
		)
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records one finished execution. It matches TaskHooks.OnTaskFinish.
func (m *Metrics) ObserveRun(run housekeeper.Run) {
	result := "ok"
	if run.Err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(run.Name, run.Kind.String(), result).Inc()
	m.duration.WithLabelValues(run.Name).Observe(run.Duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
