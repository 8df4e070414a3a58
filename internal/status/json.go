package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Screen        string        `json:"screen"`
	Player        string        `json:"player,omitempty"`
	SessionID     string        `json:"session_id,omitempty"`
	Game          GameJSON      `json:"game"`
	Sensor        SubsystemJSON `json:"sensor"`
	Camera        SubsystemJSON `json:"camera"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"event_counts"`
	Config        ConfigJSON    `json:"config"`
}

// GameJSON is the JSON representation of the game state.
// Unknown values (no best yet, no samples) are null.
type GameJSON struct {
	Armed         bool     `json:"armed"`
	InAttempt     bool     `json:"in_attempt"`
	Completed     bool     `json:"completed"`
	BestTimeMs    *int64   `json:"best_time_ms"`
	LatestCM      *float64 `json:"latest_cm"`
	MinDistanceCM *float64 `json:"min_distance_cm"`
	ElapsedMs     int64    `json:"elapsed_ms"`
}

// SubsystemJSON reports a device connection.
type SubsystemJSON struct {
	Connected bool   `json:"connected"`
	Name      string `json:"name,omitempty"`
	Message   string `json:"message,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Armed     int `json:"armed"`
	Completed int `json:"completed"`
	Missed    int `json:"missed"`
	TimedOut  int `json:"timed_out"`
	Reset     int `json:"reset"`
}

// ConfigJSON is the JSON representation of the configuration.
type ConfigJSON struct {
	FrameRate      int     `json:"frame_rate"`
	CameraRate     int     `json:"camera_rate"`
	ArmZoneCM      float64 `json:"arm_zone_cm"`
	NearCooldownMs int64   `json:"near_cooldown_ms"`
	AttemptGapMs   int64   `json:"attempt_gap_ms"`
	HeartbeatMs    int64   `json:"heartbeat_ms"`
	Broker         string  `json:"broker"`
	HTTPAddr       string  `json:"http_addr"`
	Store          string  `json:"store"`
}

func buildInner(snap Snapshot) StatusInner {
	screen := snap.Screen
	if screen == "" {
		screen = "UNKNOWN"
	}

	g := GameJSON{
		Armed:     snap.Game.Armed,
		InAttempt: snap.Game.InAttempt,
		Completed: snap.Game.Completed,
		ElapsedMs: snap.Game.ElapsedMs,
	}
	if snap.Game.HasBest {
		best := snap.Game.BestTimeMs
		g.BestTimeMs = &best
	}
	if snap.Game.HasLatest {
		latest := snap.Game.LatestCM
		g.LatestCM = &latest
	}
	if !math.IsInf(snap.Game.MinDistance, 0) && !math.IsNaN(snap.Game.MinDistance) {
		closest := snap.Game.MinDistance
		g.MinDistanceCM = &closest
	}

	return StatusInner{
		Screen:        screen,
		Player:        snap.Player,
		SessionID:     snap.SessionID,
		Game:          g,
		Sensor:        subsystemJSON(snap.Sensor),
		Camera:        subsystemJSON(snap.Camera),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Armed:     snap.Counts.Armed,
			Completed: snap.Counts.Completed,
			Missed:    snap.Counts.Missed,
			TimedOut:  snap.Counts.TimedOut,
			Reset:     snap.Counts.Reset,
		},
		Config: ConfigJSON{
			FrameRate:      snap.Config.FrameRate,
			CameraRate:     snap.Config.CameraRate,
			ArmZoneCM:      snap.Config.ArmZoneCM,
			NearCooldownMs: snap.Config.NearCooldownMs,
			AttemptGapMs:   snap.Config.AttemptGapMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
			Store:          snap.Config.Store,
		},
	}
}

func subsystemJSON(s Subsystem) SubsystemJSON {
	return SubsystemJSON{Connected: s.Connected, Name: s.Name, Message: s.Message}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatCompact returns the status as single-line JSON (no event/reason).
func FormatCompact(snap Snapshot) []byte {
	data, _ := json.Marshal(StatusJSON{Status: buildInner(snap)})
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
