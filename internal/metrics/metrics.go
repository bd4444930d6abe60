// Package metrics exports benchmark results as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/bnema/segbench/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "segbench"

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	PhaseDuration *prometheus.HistogramVec
	Speedup       prometheus.Gauge
	Efficiency    prometheus.Gauge
	Workers       prometheus.Gauge
	Segments      prometheus.Counter
	Runs          *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Wall-clock time of the sequential and parallel transform phases",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~400s
			},
			[]string{"phase"},
		),
		Speedup: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "speedup_ratio",
				Help:      "Sequential over parallel time of the last successful run",
			},
		),
		Efficiency: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "efficiency_percent",
				Help:      "Speedup per worker of the last successful run",
			},
		),
		Workers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "workers",
				Help:      "Worker count of the last parallel phase",
			},
		),
		Segments: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "segments_total",
				Help:      "Total number of segments processed by successful runs",
			},
		),
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveRun records a finished run. Failed runs only count towards runs_total.
func (m *Metrics) ObserveRun(run *domain.Run) {
	if !run.Succeeded() {
		m.Runs.WithLabelValues("failed").Inc()
		return
	}
	m.Runs.WithLabelValues("reported").Inc()

	m.PhaseDuration.WithLabelValues(string(domain.StateSequentialRun)).Observe(run.Sequential.Seconds())
	m.PhaseDuration.WithLabelValues(string(domain.StateParallelRun)).Observe(run.Parallel.Seconds())
	m.Speedup.Set(run.Metrics.Speedup)
	m.Efficiency.Set(run.Metrics.Efficiency)
	m.Workers.Set(float64(run.Metrics.Workers))
	m.Segments.Add(float64(run.Metrics.NumSegments))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
