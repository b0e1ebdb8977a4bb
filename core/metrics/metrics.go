package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "score_ledger"

// Metrics groups the collectors recorded by comparison sweeps.
type Metrics struct {
	Registry *prometheus.Registry

	Sweeps        *prometheus.CounterVec
	Findings      *prometheus.CounterVec
	SweepDuration *prometheus.HistogramVec
	Feedback      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Comparison sweeps by outcome.",
		}, []string{"outcome"}),
		Findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Discrepancies found by comparison sweeps, by report bucket.",
		}, []string{"bucket"}),
		SweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of comparison sweeps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dry_run"}),
		Feedback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_total",
			Help:      "Markers added or removed on chat messages.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		m.Sweeps,
		m.Findings,
		m.SweepDuration,
		m.Feedback,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
