// Package metrics exposes Prometheus counters for pipeline runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of a process. Each instance owns its
// registry so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	RecordsProduced prometheus.Counter
	RecordsConsumed prometheus.Counter
	TransportErrors *prometheus.CounterVec
	WorkerShortfall prometheus.Counter

	RunsTotal    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	RunsActive   prometheus.Gauge
	LastAverage  prometheus.Gauge
	StageSeconds *prometheus.HistogramVec
}

// New creates and registers a metrics collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RecordsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_records_produced_total",
			Help: "Total number of records written to the transport",
		}),
		RecordsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_records_consumed_total",
			Help: "Total number of records read from the transport",
		}),
		TransportErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_transport_errors_total",
				Help: "Transport failures that ended a worker early",
			},
			[]string{"side"},
		),
		WorkerShortfall: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_consumer_shortfall_records_total",
			Help: "Records consumers failed to read from their quota",
		}),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Finished runs by outcome",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Wall time of a whole run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		RunsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipeline_runs_active",
			Help: "Runs currently executing",
		}),
		LastAverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipeline_last_average",
			Help: "Average computed by the most recent successful run",
		}),
		StageSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_stage_duration_seconds",
				Help:    "Wall time per run stage",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"stage"},
		),
	}

	m.registry.MustRegister(
		m.RecordsProduced,
		m.RecordsConsumed,
		m.TransportErrors,
		m.WorkerShortfall,
		m.RunsTotal,
		m.RunDuration,
		m.RunsActive,
		m.LastAverage,
		m.StageSeconds,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStage records how long a stage took
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// RunFinished records the outcome of a run
func (m *Metrics) RunFinished(status string, d time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(d.Seconds())
}
