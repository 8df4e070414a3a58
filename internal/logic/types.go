// Package logic contains the pure game rules for the reaction arcade: decoding
// sensor lines and tracking the attempt/arming state of one game session.
// This package has NO external dependencies (no serial, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Default thresholds.
const (
	DefaultArmZoneCM    = 28.0
	DefaultNearCooldown = 600 * time.Millisecond
	DefaultAttemptGap   = 700 * time.Millisecond
)

// EventKind tags a decoded sensor event.
type EventKind string

const (
	KindDistance     EventKind = "DISTANCE"
	KindProximity    EventKind = "PROXIMITY"
	KindUnrecognized EventKind = "UNRECOGNIZED"
)

// SensorEvent is one typed event decoded from a sensor line.
type SensorEvent struct {
	Kind       EventKind
	DistanceCM float64 // KindDistance only
	Raw        string  // KindUnrecognized only
}

// Distance returns a distance sample event.
func Distance(cm float64) SensorEvent {
	return SensorEvent{Kind: KindDistance, DistanceCM: cm}
}

// Proximity returns a proximity pulse event.
func Proximity() SensorEvent {
	return SensorEvent{Kind: KindProximity}
}

// Thresholds configures the attempt state machine.
type Thresholds struct {
	ArmZoneCM    float64       // arm once a sample is at or below this distance
	NearCooldown time.Duration // minimum gap between accepted proximity events
	AttemptGap   time.Duration // sample silence that ends an attempt
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ArmZoneCM:    DefaultArmZoneCM,
		NearCooldown: DefaultNearCooldown,
		AttemptGap:   DefaultAttemptGap,
	}
}

// EventType represents an attempt state transition.
type EventType string

const (
	EventArmed     EventType = "ARMED"
	EventCompleted EventType = "COMPLETED"
	EventMissed    EventType = "MISSED"
	EventTimedOut  EventType = "TIMED_OUT"
	EventReset     EventType = "RESET"
)

// Event represents a state transition to be reported.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// DistanceCM is the sample that armed the machine (EventArmed).
	DistanceCM float64
	// ElapsedMs is the time since session start (EventCompleted).
	ElapsedMs int64
	// BestTimeMs is the session best after this event (EventCompleted).
	BestTimeMs int64
	// MinDistanceCM is the closest sample of the attempt that just ended
	// (EventCompleted, EventTimedOut, EventMissed, EventReset); +Inf if no
	// sample was seen.
	MinDistanceCM float64
}

// AttemptState is a point-in-time copy of the machine's state.
type AttemptState struct {
	Armed         bool
	InAttempt     bool
	SessionStart  time.Time
	MinDistanceCM float64
	LastSampleAt  time.Time
	Completed     bool
	BestTimeMs    int64
	HasBest       bool
	// LatestCM is the most recent distance sample, for display only.
	LatestCM  float64
	HasLatest bool
}

// EventCounts tracks the number of each event type since session start.
type EventCounts struct {
	Armed     int
	Completed int
	Missed    int
	TimedOut  int
	Reset     int
}
