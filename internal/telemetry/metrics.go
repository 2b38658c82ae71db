// Package telemetry exposes game activity as Prometheus metrics.
package telemetry

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/cascade/internal/engine"
)

const namespace = "cascade"

// Metrics holds the collectors fed by engine events. Each instance owns its
// registry, so tests and multiple engines do not collide.
type Metrics struct {
	reg *prometheus.Registry

	placements  *prometheus.CounterVec
	selections  prometheus.Counter
	completions *prometheus.CounterVec
	emergencies *prometheus.CounterVec
	score       prometheus.Gauge
	status      prometheus.Gauge
	countdown   prometheus.Gauge
	elapsed     prometheus.Histogram
}

// New creates and registers the collectors. withRuntime adds the Go and
// process collectors for long-running servers.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placements_total",
			Help:      "Placement attempts by result.",
		}, []string{"result"}),
		selections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_changes_total",
			Help:      "Selection changes, including clears.",
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "levels_completed_total",
			Help:      "Completed levels by emergency mode.",
		}, []string{"emergency"}),
		emergencies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emergencies_ended_total",
			Help:      "Emergencies that ended before completion, by reason.",
		}, []string{"reason"}),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "score",
			Help:      "Current session score.",
		}),
		status: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "patient_status",
			Help:      "Current patient status, 0-100.",
		}),
		countdown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "countdown_seconds",
			Help:      "Seconds left in the emergency scenario.",
		}),
		elapsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "level_elapsed_seconds",
			Help:      "Elapsed session seconds at level completion.",
			Buckets:   []float64{30, 60, 120, 180, 300, 600},
		}),
	}
	m.reg.MustRegister(m.placements, m.selections, m.completions, m.emergencies,
		m.score, m.status, m.countdown, m.elapsed)
	if withRuntime {
		m.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listener returns an engine listener that updates the collectors.
func (m *Metrics) Listener() engine.Listener { return m.Observe }

// Observe updates the collectors for one engine event.
func (m *Metrics) Observe(ev engine.Event) {
	switch e := ev.(type) {
	case engine.PlacementSucceeded:
		m.placements.WithLabelValues("success").Inc()
		m.score.Set(float64(e.Score))
	case engine.PlacementFailed:
		m.placements.WithLabelValues("failure").Inc()
	case engine.SelectionChanged:
		m.selections.Inc()
	case engine.StatusChanged:
		m.status.Set(float64(e.Status))
		m.countdown.Set(float64(e.Countdown))
	case engine.EmergencyEnded:
		m.emergencies.WithLabelValues(e.Reason).Inc()
		m.status.Set(float64(e.Status))
	case engine.LevelCompleted:
		m.completions.WithLabelValues(strconv.FormatBool(e.Emergency)).Inc()
		m.score.Set(float64(e.Score))
		m.elapsed.Observe(float64(e.Elapsed))
	}
}
