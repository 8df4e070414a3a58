package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sweeney/reaction-arcade/internal/logic"
)

func TestObserveEvent(t *testing.T) {
	m := New()

	m.ObserveEvent(logic.Event{Type: logic.EventArmed})
	m.ObserveEvent(logic.Event{Type: logic.EventTimedOut})
	m.ObserveEvent(logic.Event{Type: logic.EventArmed})
	m.ObserveEvent(logic.Event{Type: logic.EventCompleted, ElapsedMs: 900})

	if got := testutil.ToFloat64(m.attemptEvents.WithLabelValues("ARMED")); got != 2 {
		t.Errorf("ARMED: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.attemptEvents.WithLabelValues("COMPLETED")); got != 1 {
		t.Errorf("COMPLETED: got %v, want 1", got)
	}

	expected := `
# HELP arcade_completion_seconds Time from game start to a scored finish.
# TYPE arcade_completion_seconds histogram
arcade_completion_seconds_bucket{le="0.25"} 0
arcade_completion_seconds_bucket{le="0.5"} 0
arcade_completion_seconds_bucket{le="0.75"} 0
arcade_completion_seconds_bucket{le="1"} 1
arcade_completion_seconds_bucket{le="1.5"} 1
arcade_completion_seconds_bucket{le="2"} 1
arcade_completion_seconds_bucket{le="3"} 1
arcade_completion_seconds_bucket{le="5"} 1
arcade_completion_seconds_bucket{le="10"} 1
arcade_completion_seconds_bucket{le="+Inf"} 1
arcade_completion_seconds_sum 0.9
arcade_completion_seconds_count 1
`
	if err := testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "arcade_completion_seconds"); err != nil {
		t.Error(err)
	}
}

func TestObserveSensor(t *testing.T) {
	m := New()
	m.ObserveSensor(logic.KindDistance)
	m.ObserveSensor(logic.KindDistance)
	m.ObserveSensor(logic.KindUnrecognized)

	if got := testutil.ToFloat64(m.sensorLines.WithLabelValues("DISTANCE")); got != 2 {
		t.Errorf("DISTANCE: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.sensorLines.WithLabelValues("UNRECOGNIZED")); got != 1 {
		t.Errorf("UNRECOGNIZED: got %v, want 1", got)
	}
}

func TestGauges(t *testing.T) {
	m := New()

	m.SetSensorConnected(true)
	if got := testutil.ToFloat64(m.sensorConnected); got != 1 {
		t.Errorf("sensor_connected: got %v, want 1", got)
	}
	m.SetSensorConnected(false)
	if got := testutil.ToFloat64(m.sensorConnected); got != 0 {
		t.Errorf("sensor_connected: got %v, want 0", got)
	}

	m.SessionStarted()
	m.LeaderboardError()
	if got := testutil.ToFloat64(m.sessions); got != 1 {
		t.Errorf("sessions_total: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.leaderboardErrs); got != 1 {
		t.Errorf("leaderboard_errors_total: got %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveEvent(logic.Event{Type: logic.EventArmed})
	m.ObserveSensor(logic.KindProximity)
	m.SetSensorConnected(true)
	m.SessionStarted()
	m.LeaderboardError()
}
