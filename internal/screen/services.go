package screen

import (
	"log"

	"github.com/google/uuid"

	"github.com/sweeney/reaction-arcade/internal/audio"
	"github.com/sweeney/reaction-arcade/internal/camera"
	"github.com/sweeney/reaction-arcade/internal/config"
	"github.com/sweeney/reaction-arcade/internal/gpio"
	"github.com/sweeney/reaction-arcade/internal/leaderboard"
	"github.com/sweeney/reaction-arcade/internal/metrics"
	"github.com/sweeney/reaction-arcade/internal/mqtt"
	"github.com/sweeney/reaction-arcade/internal/sensor"
	"github.com/sweeney/reaction-arcade/internal/status"
)

// Services are the collaborators shared by all screens. Port and
// CameraIndex are the current device choices; screens update them and
// persist them through Settings.
type Services struct {
	Config   config.Config
	Settings *config.SettingsFile

	// Sensor opens the sensor on port; an empty port probes candidates.
	Sensor func(port string) sensor.Source
	// Ports lists candidate serial ports.
	Ports func() ([]string, error)
	// Camera opens camera devices.
	Camera camera.Source
	// Proximity opens the optional proximity switch. Nil when none is wired.
	Proximity func() (gpio.Reader, error)

	Board   leaderboard.Store
	Events  mqtt.Publisher
	Metrics *metrics.Metrics
	Tracker *status.Tracker
	Audio   audio.Player

	// NewSessionID names a game session.
	NewSessionID func() string

	Port        string
	CameraIndex int
}

func (s *Services) sessionID() string {
	if s.NewSessionID != nil {
		return s.NewSessionID()
	}
	return uuid.NewString()
}

func (s *Services) sensorSource(port string) sensor.Source {
	if s.Sensor == nil {
		return nil
	}
	return s.Sensor(port)
}

func (s *Services) candidates() []string {
	if s.Ports == nil {
		return nil
	}
	ports, err := s.Ports()
	if err != nil {
		log.Printf("sensor: list ports: %v", err)
		return nil
	}
	return ports
}

func (s *Services) setScreen(k Kind) {
	if s.Tracker != nil {
		s.Tracker.SetScreen(string(k))
	}
}

func (s *Services) play(c audio.Cue) {
	if s.Audio != nil {
		s.Audio.Play(c)
	}
}

// savePort remembers port for later sessions.
func (s *Services) savePort(port string) {
	s.Port = port
	if s.Settings == nil || port == "" {
		return
	}
	if err := s.Settings.SetSerialPort(port); err != nil {
		log.Printf("settings: save serial port: %v", err)
	}
}

// saveCamera remembers the camera index for later sessions.
func (s *Services) saveCamera(index int) {
	s.CameraIndex = index
	if s.Settings == nil {
		return
	}
	if err := s.Settings.SetCameraIndex(index); err != nil {
		log.Printf("settings: save camera index: %v", err)
	}
}

// loadBoard reads the leaderboard, returning nil and a message on failure.
func (s *Services) loadBoard() ([]leaderboard.Record, string) {
	if s.Board == nil {
		return nil, "leaderboard unavailable"
	}
	recs, err := s.Board.Load()
	if err != nil {
		log.Printf("leaderboard: load: %v", err)
		s.Metrics.LeaderboardError()
		return nil, "leaderboard unavailable"
	}
	return recs, ""
}

func (s *Services) publish(e mqtt.GameEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(e); err != nil {
		// Don't crash on publish failure
		log.Printf("mqtt: publish %s failed: %v", e.Type, err)
	}
}
