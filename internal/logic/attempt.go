package logic

import (
	"math"
	"time"
)

// Machine tracks the arming and completion state of one game session.
// It is single-shot: once a finish is scored, further input is ignored.
// Not safe for concurrent use; it is owned by the game screen.
type Machine struct {
	th       Thresholds
	state    AttemptState
	lastNear time.Time // last accepted proximity event
	nearSeen bool
	counts   EventCounts
}

// NewMachine creates a machine whose reaction clock starts at sessionStart.
func NewMachine(th Thresholds, sessionStart time.Time) *Machine {
	m := &Machine{th: th}
	m.state.SessionStart = sessionStart
	m.softReset()
	return m
}

// Process routes a decoded sensor event to the matching handler.
// Unrecognized events are ignored.
func (m *Machine) Process(ev SensorEvent, now time.Time) []Event {
	switch ev.Kind {
	case KindDistance:
		return m.OnDistance(ev.DistanceCM, now)
	case KindProximity:
		return m.OnProximity(now)
	}
	return nil
}

// OnDistance folds a distance sample into the attempt. Arming does not move
// the session start: the reported time is measured from screen entry.
func (m *Machine) OnDistance(cm float64, now time.Time) []Event {
	if m.state.Completed {
		return nil
	}

	m.state.LatestCM = cm
	m.state.HasLatest = true
	m.state.LastSampleAt = now
	m.state.MinDistanceCM = math.Min(m.state.MinDistanceCM, cm)

	if m.state.Armed || cm > m.th.ArmZoneCM {
		return nil
	}

	m.state.Armed = true
	m.state.InAttempt = true
	return m.emit(Event{Timestamp: now, Type: EventArmed, DistanceCM: cm})
}

// OnProximity handles a proximity pulse. While armed it scores the finish and
// completes the session; otherwise it soft-resets the attempt.
func (m *Machine) OnProximity(now time.Time) []Event {
	if m.state.Completed {
		return nil
	}
	if m.nearSeen && now.Sub(m.lastNear) < m.th.NearCooldown {
		return nil
	}
	m.lastNear = now
	m.nearSeen = true

	if !m.state.Armed {
		minCM := m.state.MinDistanceCM
		m.softReset()
		return m.emit(Event{Timestamp: now, Type: EventMissed, MinDistanceCM: minCM})
	}

	elapsed := roundMillis(now.Sub(m.state.SessionStart))
	if !m.state.HasBest || elapsed < m.state.BestTimeMs {
		m.state.BestTimeMs = elapsed
		m.state.HasBest = true
	}
	m.state.Completed = true
	m.state.InAttempt = false

	return m.emit(Event{
		Timestamp:     now,
		Type:          EventCompleted,
		ElapsedMs:     elapsed,
		BestTimeMs:    m.state.BestTimeMs,
		MinDistanceCM: m.state.MinDistanceCM,
	})
}

// CheckTimeout ends the current attempt if no distance sample has arrived
// for longer than the attempt gap. The score is left untouched.
func (m *Machine) CheckTimeout(now time.Time) []Event {
	if m.state.Completed || !m.state.InAttempt {
		return nil
	}
	if now.Sub(m.state.LastSampleAt) <= m.th.AttemptGap {
		return nil
	}

	minCM := m.state.MinDistanceCM
	m.softReset()
	return m.emit(Event{Timestamp: now, Type: EventTimedOut, MinDistanceCM: minCM})
}

// ForceReset clears attempt-local state on explicit user request.
// Once the session is completed it does nothing.
func (m *Machine) ForceReset(now time.Time) []Event {
	if m.state.Completed {
		return nil
	}
	minCM := m.state.MinDistanceCM
	m.softReset()
	return m.emit(Event{Timestamp: now, Type: EventReset, MinDistanceCM: minCM})
}

// State returns a copy of the current state.
func (m *Machine) State() AttemptState {
	return m.state
}

// Best returns the best completion time of the session, if any.
func (m *Machine) Best() (int64, bool) {
	return m.state.BestTimeMs, m.state.HasBest
}

// IsCompleted reports whether the session has been scored.
func (m *Machine) IsCompleted() bool {
	return m.state.Completed
}

// Elapsed returns the time since session start, for display.
func (m *Machine) Elapsed(now time.Time) time.Duration {
	return now.Sub(m.state.SessionStart)
}

// EventCountsSnapshot returns a copy of the event counters.
func (m *Machine) EventCountsSnapshot() EventCounts {
	return m.counts
}

func (m *Machine) softReset() {
	m.state.Armed = false
	m.state.InAttempt = false
	m.state.MinDistanceCM = math.Inf(1)
	m.state.LastSampleAt = time.Time{}
}

func (m *Machine) emit(e Event) []Event {
	switch e.Type {
	case EventArmed:
		m.counts.Armed++
	case EventCompleted:
		m.counts.Completed++
	case EventMissed:
		m.counts.Missed++
	case EventTimedOut:
		m.counts.TimedOut++
	case EventReset:
		m.counts.Reset++
	}
	return []Event{e}
}

// roundMillis rounds d to the nearest whole millisecond.
func roundMillis(d time.Duration) int64 {
	return int64(math.Round(float64(d) / float64(time.Millisecond)))
}
