// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/reaction-arcade/internal/logic"
)

// Topic is the MQTT topic for game events.
const Topic = "arcade/reaction/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "arcade/reaction/system"

// Session lifecycle event types. Attempt events use logic.EventType names.
const (
	EventSessionStart = "SESSION_START"
	EventSessionEnd   = "SESSION_END"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a game event to the broker.
	// Returns error if publishing fails (should not crash the game).
	Publish(event GameEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// GameEvent is one event of a game session.
type GameEvent struct {
	Timestamp time.Time
	Type      string
	SessionID string
	Player    string

	// Optional details; zero values are omitted from the payload.
	ElapsedMs     int64
	BestTimeMs    int64
	DistanceCM    float64
	MinDistanceCM float64
}

// FromLogic converts an attempt event into a game event for the session.
func FromLogic(sessionID, player string, e logic.Event) GameEvent {
	return GameEvent{
		Timestamp:     e.Timestamp,
		Type:          string(e.Type),
		SessionID:     sessionID,
		Player:        player,
		ElapsedMs:     e.ElapsedMs,
		BestTimeMs:    e.BestTimeMs,
		DistanceCM:    e.DistanceCM,
		MinDistanceCM: e.MinDistanceCM,
	}
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "QUIT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Game GamePayload `json:"game"`
}

// GamePayload contains the game event details.
type GamePayload struct {
	Timestamp     string   `json:"timestamp"`
	Event         string   `json:"event"`
	SessionID     string   `json:"session_id"`
	Player        string   `json:"player,omitempty"`
	ElapsedMs     *int64   `json:"elapsed_ms,omitempty"`
	BestTimeMs    *int64   `json:"best_time_ms,omitempty"`
	DistanceCM    *float64 `json:"distance_cm,omitempty"`
	MinDistanceCM *float64 `json:"min_distance_cm,omitempty"`
}

// FormatPayload creates the JSON payload for a game event.
// Non-finite distances (no sample seen) are omitted.
func FormatPayload(event GameEvent) ([]byte, error) {
	p := GamePayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Event:     event.Type,
		SessionID: event.SessionID,
		Player:    event.Player,
	}
	if event.ElapsedMs > 0 {
		p.ElapsedMs = &event.ElapsedMs
	}
	if event.BestTimeMs > 0 {
		p.BestTimeMs = &event.BestTimeMs
	}
	if finite(event.DistanceCM) && event.DistanceCM != 0 {
		p.DistanceCM = &event.DistanceCM
	}
	if finite(event.MinDistanceCM) && event.MinDistanceCM != 0 {
		p.MinDistanceCM = &event.MinDistanceCM
	}
	return json.Marshal(Payload{Game: p})
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(GameEvent) error         { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NopPublisher) Close() error                    { return nil }
func (NopPublisher) IsConnected() bool               { return false }
