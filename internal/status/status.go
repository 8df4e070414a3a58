// Package status provides a thread-safe status tracker for the reaction arcade.
// The frame loop writes it; HTTP handlers and MQTT system events read it.
package status

import (
	"math"
	"sync"
	"time"

	"github.com/sweeney/reaction-arcade/internal/logic"
)

// Config contains configuration for display.
type Config struct {
	FrameRate      int
	CameraRate     int
	ArmZoneCM      float64
	NearCooldownMs int64
	AttemptGapMs   int64
	HeartbeatMs    int64
	Broker         string
	HTTPAddr       string
	Store          string // "file" or "postgres"
}

// Subsystem is the connection state of a device (sensor, camera).
type Subsystem struct {
	Connected bool
	Name      string // port or device index
	Message   string
}

// Game is the display state of the running game session.
type Game struct {
	Armed       bool
	InAttempt   bool
	Completed   bool
	BestTimeMs  int64
	HasBest     bool
	LatestCM    float64
	HasLatest   bool
	MinDistance float64 // +Inf when no sample in the current attempt
	ElapsedMs   int64
}

// GameFrom builds the display state from the machine state at now.
func GameFrom(st logic.AttemptState, now time.Time) Game {
	return Game{
		Armed:       st.Armed,
		InAttempt:   st.InAttempt,
		Completed:   st.Completed,
		BestTimeMs:  st.BestTimeMs,
		HasBest:     st.HasBest,
		LatestCM:    st.LatestCM,
		HasLatest:   st.HasLatest,
		MinDistance: st.MinDistanceCM,
		ElapsedMs:   now.Sub(st.SessionStart).Milliseconds(),
	}
}

// Snapshot is a point-in-time view of arcade state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Screen        string
	Player        string
	SessionID     string
	Game          Game
	Counts        logic.EventCounts
	Sensor        Subsystem
	Camera        Subsystem
	MQTTConnected bool
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the process started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// InGame reports whether a game session is active.
func (s Snapshot) InGame() bool {
	return s.SessionID != ""
}

// Tracker holds mutable arcade state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Game:      Game{MinDistance: math.Inf(1)},
		},
	}
}

// SetScreen records the active screen.
func (t *Tracker) SetScreen(name string) {
	t.mu.Lock()
	t.snap.Screen = name
	t.mu.Unlock()
}

// StartSession records a new game session and clears the previous game state.
func (t *Tracker) StartSession(id, player string) {
	t.mu.Lock()
	t.snap.SessionID = id
	t.snap.Player = player
	t.snap.Game = Game{MinDistance: math.Inf(1)}
	t.snap.Counts = logic.EventCounts{}
	t.mu.Unlock()
}

// EndSession clears the session identity. The last game state is kept for display.
func (t *Tracker) EndSession() {
	t.mu.Lock()
	t.snap.SessionID = ""
	t.mu.Unlock()
}

// UpdateGame sets the game state and event counts.
// Called by the game screen on every frame.
func (t *Tracker) UpdateGame(g Game, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Game = g
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetSensor sets the sensor connection state.
func (t *Tracker) SetSensor(s Subsystem) {
	t.mu.Lock()
	t.snap.Sensor = s
	t.mu.Unlock()
}

// SetCamera sets the camera connection state.
func (t *Tracker) SetCamera(s Subsystem) {
	t.mu.Lock()
	t.snap.Camera = s
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the arcade state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
