// Package metrics exposes game and device counters for Prometheus.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/reaction-arcade/internal/logic"
)

// Metrics holds the arcade collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	attemptEvents   *prometheus.CounterVec
	sensorLines     *prometheus.CounterVec
	sensorConnected prometheus.Gauge
	completion      prometheus.Histogram
	sessions        prometheus.Counter
	leaderboardErrs prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		attemptEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arcade",
			Name:      "attempt_events_total",
			Help:      "Attempt state machine events by type.",
		}, []string{"type"}),
		sensorLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arcade",
			Name:      "sensor_events_total",
			Help:      "Decoded sensor events by kind.",
		}, []string{"kind"}),
		sensorConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arcade",
			Name:      "sensor_connected",
			Help:      "1 while the serial sensor is connected.",
		}),
		completion: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arcade",
			Name:      "completion_seconds",
			Help:      "Time from game start to a scored finish.",
			Buckets:   []float64{0.25, 0.5, 0.75, 1, 1.5, 2, 3, 5, 10},
		}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arcade",
			Name:      "sessions_total",
			Help:      "Game sessions started.",
		}),
		leaderboardErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arcade",
			Name:      "leaderboard_errors_total",
			Help:      "Failed leaderboard reads and writes.",
		}),
	}
	m.Registry.MustRegister(
		m.attemptEvents,
		m.sensorLines,
		m.sensorConnected,
		m.completion,
		m.sessions,
		m.leaderboardErrs,
	)
	return m
}

// ObserveEvent counts an attempt event; completions also record their time.
func (m *Metrics) ObserveEvent(e logic.Event) {
	if m == nil {
		return
	}
	m.attemptEvents.WithLabelValues(string(e.Type)).Inc()
	if e.Type == logic.EventCompleted {
		m.completion.Observe(float64(e.ElapsedMs) / 1000)
	}
}

// ObserveSensor counts a decoded sensor event.
func (m *Metrics) ObserveSensor(kind logic.EventKind) {
	if m == nil {
		return
	}
	m.sensorLines.WithLabelValues(string(kind)).Inc()
}

// SetSensorConnected records the sensor link state.
func (m *Metrics) SetSensorConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.sensorConnected.Set(1)
	} else {
		m.sensorConnected.Set(0)
	}
}

// SessionStarted counts a new game session.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// LeaderboardError counts a failed leaderboard operation.
func (m *Metrics) LeaderboardError() {
	if m == nil {
		return
	}
	m.leaderboardErrs.Inc()
}
