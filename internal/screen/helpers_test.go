package screen

import (
	"strings"
	"testing"
	"time"

	"github.com/sweeney/reaction-arcade/internal/audio"
	"github.com/sweeney/reaction-arcade/internal/camera"
	"github.com/sweeney/reaction-arcade/internal/config"
	"github.com/sweeney/reaction-arcade/internal/leaderboard"
	"github.com/sweeney/reaction-arcade/internal/metrics"
	"github.com/sweeney/reaction-arcade/internal/mqtt"
	"github.com/sweeney/reaction-arcade/internal/sensor"
	"github.com/sweeney/reaction-arcade/internal/status"
)

var t0 = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

type testEnv struct {
	svc     *Services
	sensor  *sensor.FakeSource
	camera  *camera.FakeSource
	board   *leaderboard.MemStore
	events  *mqtt.FakePublisher
	audio   *audio.FakePlayer
	tracker *status.Tracker

	ports  []string
	opened []string // ports passed to the sensor factory
}

func newTestEnv(t *testing.T, records ...leaderboard.Record) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	env := &testEnv{
		sensor:  sensor.NewFakeSource(),
		camera:  &camera.FakeSource{},
		board:   leaderboard.NewMemStore(records...),
		events:  mqtt.NewFakePublisher(),
		audio:   &audio.FakePlayer{},
		tracker: status.NewTracker(t0, status.Config{}),
		ports:   []string{"/dev/ttyUSB0", "/dev/ttyACM0"},
	}
	env.svc = &Services{
		Config:   cfg,
		Settings: config.NewSettingsFile(cfg.SettingsPath()),
		Sensor: func(port string) sensor.Source {
			env.opened = append(env.opened, port)
			return env.sensor
		},
		Ports:        func() ([]string, error) { return env.ports, nil },
		Camera:       env.camera,
		Board:        env.board,
		Events:       env.events,
		Metrics:      metrics.New(),
		Tracker:      env.tracker,
		Audio:        env.audio,
		NewSessionID: func() string { return "session-1" },
	}
	return env
}

// fakeCanvas records drawn text.
type fakeCanvas struct {
	texts []string
	boxes int
	fills int
}

func (c *fakeCanvas) Text(x, y float64, s string, st Style) { c.texts = append(c.texts, s) }
func (c *fakeCanvas) Box(x, y, w, h float64, st Style)    { c.boxes++ }
func (c *fakeCanvas) Fill(x, y, w, h float64, st Style)   { c.fills++ }

func (c *fakeCanvas) contains(sub string) bool {
	for _, s := range c.texts {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func typeText(s Screen, text string) {
	for _, r := range text {
		s.HandleKey(Rune(r), t0)
	}
}
