package screen

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/sweeney/reaction-arcade/internal/audio"
	"github.com/sweeney/reaction-arcade/internal/camera"
	"github.com/sweeney/reaction-arcade/internal/gpio"
	"github.com/sweeney/reaction-arcade/internal/logic"
	"github.com/sweeney/reaction-arcade/internal/mqtt"
	"github.com/sweeney/reaction-arcade/internal/sensor"
	"github.com/sweeney/reaction-arcade/internal/status"
)

// Game runs one session for one player: it feeds sensor lines and
// proximity pulses into the attempt machine and finishes on the first
// completion.
type Game struct {
	svc       *Services
	player    string
	sessionID string

	machine *logic.Machine
	link    *sensor.Link
	feed    *camera.Feed
	prox    gpio.Reader
	edge    gpio.EdgeDetector

	mirror   bool
	frame    camera.Frame
	hasFrame bool
	result   *Nav
	now      time.Time
}

// NewGame creates the game screen for player.
func NewGame(svc *Services, player string) *Game {
	return &Game{svc: svc, player: player}
}

func (g *Game) Kind() Kind { return KindGame }

// SessionID returns the id of the running session.
func (g *Game) SessionID() string { return g.sessionID }

// State returns the attempt state.
func (g *Game) State() logic.AttemptState { return g.machine.State() }

// Mirrored reports whether the camera preview is flipped.
func (g *Game) Mirrored() bool { return g.mirror }

func (g *Game) Enter(now time.Time) {
	cfg := g.svc.Config
	g.now = now
	g.sessionID = g.svc.sessionID()
	g.machine = logic.NewMachine(cfg.Thresholds, now)

	g.svc.setScreen(KindGame)
	if g.svc.Tracker != nil {
		g.svc.Tracker.StartSession(g.sessionID, g.player)
	}
	g.svc.Metrics.SessionStarted()
	g.svc.publish(mqtt.GameEvent{
		Timestamp: now,
		Type:      mqtt.EventSessionStart,
		SessionID: g.sessionID,
		Player:    g.player,
	})
	log.Printf("game: session %s started for %q", g.sessionID, g.player)

	g.link = sensor.NewLink(g.svc.sensorSource(g.svc.Port))
	if err := g.link.Connect(); err != nil {
		log.Printf("game: sensor not connected: %v", err)
	}

	g.feed = camera.NewFeed(g.svc.Camera, g.svc.CameraIndex, cfg.CameraInterval())
	if err := g.feed.Connect(); err != nil {
		log.Printf("game: camera not connected: %v", err)
	}

	if g.svc.Proximity != nil {
		r, err := g.svc.Proximity()
		if err != nil {
			log.Printf("game: proximity switch unavailable: %v", err)
		} else {
			g.prox = r
		}
	}
	g.report(now)
}

func (g *Game) Exit() {
	if g.link != nil {
		g.link.Close()
	}
	if g.feed != nil {
		g.feed.Close()
	}
	if g.prox != nil {
		_ = g.prox.Close()
		g.prox = nil
	}
	if g.sessionID == "" {
		return
	}
	g.svc.publish(mqtt.GameEvent{
		Timestamp: g.now,
		Type:      mqtt.EventSessionEnd,
		SessionID: g.sessionID,
		Player:    g.player,
	})
	if g.svc.Tracker != nil {
		g.svc.Tracker.EndSession()
	}
	log.Printf("game: session %s ended", g.sessionID)
}

func (g *Game) HandleKey(k Key, now time.Time) *Nav {
	switch {
	case k.Code == KeyEscape:
		return navTo(TagTitle)
	case k.plain('r'):
		if err := g.link.Connect(); err != nil {
			log.Printf("game: reconnect failed: %v", err)
		}
	case k.plain('p'):
		g.nextPort()
	case k.plain('m'):
		g.mirror = !g.mirror
	case k.plain('n'):
		g.handle(g.machine.ForceReset(now))
	}
	return nil
}

// nextPort switches the sensor to the candidate after the current port.
func (g *Game) nextPort() {
	current := g.link.Status().Port
	if current == "" {
		current = g.svc.Port
	}
	next, ok := sensor.NextCandidate(g.svc.candidates(), current)
	if !ok {
		log.Printf("game: no serial ports found")
		return
	}
	g.link.Close()
	g.link = sensor.NewLink(g.svc.sensorSource(next))
	if err := g.link.Connect(); err != nil {
		log.Printf("game: connect %s failed: %v", next, err)
		return
	}
	g.svc.savePort(next)
}

func (g *Game) Update(now time.Time) *Nav {
	g.now = now
	if g.result != nil {
		return g.result
	}

	for _, line := range g.link.Poll() {
		for _, ev := range logic.ParseLine(line) {
			g.svc.Metrics.ObserveSensor(ev.Kind)
			if ev.Kind == logic.KindUnrecognized {
				log.Printf("game: unrecognized line %q", ev.Raw)
				continue
			}
			g.handle(g.machine.Process(ev, now))
		}
	}

	if g.prox != nil {
		near, err := g.prox.Read()
		if err != nil {
			log.Printf("game: proximity switch: %v", err)
			_ = g.prox.Close()
			g.prox = nil
		} else if g.edge.Update(near) {
			g.handle(g.machine.OnProximity(now))
		}
	}

	g.handle(g.machine.CheckTimeout(now))

	if f, ok := g.feed.Poll(now); ok {
		g.frame, g.hasFrame = f, true
	} else {
		g.hasFrame = false
	}

	g.report(now)
	return g.result
}

// handle reports attempt events and records the session result on completion.
func (g *Game) handle(events []logic.Event) {
	for _, e := range events {
		log.Printf("game: %s (elapsed=%dms best=%dms min=%.1fcm)", e.Type, e.ElapsedMs, e.BestTimeMs, e.MinDistanceCM)
		g.svc.publish(mqtt.FromLogic(g.sessionID, g.player, e))
		g.svc.Metrics.ObserveEvent(e)
		if cue, ok := audio.ForEvent(e.Type); ok {
			g.svc.play(cue)
		}
		if e.Type == logic.EventCompleted && g.result == nil {
			g.finish(e)
		}
	}
}

func (g *Game) finish(e logic.Event) {
	fast := e.BestTimeMs
	var closest *float64
	if !math.IsInf(e.MinDistanceCM, 0) && !math.IsNaN(e.MinDistanceCM) {
		v := e.MinDistanceCM
		closest = &v
	}
	if g.svc.Board != nil {
		if _, err := g.svc.Board.Upsert(g.player, &fast, closest); err != nil {
			log.Printf("leaderboard: save %q: %v", g.player, err)
			g.svc.Metrics.LeaderboardError()
		}
	}
	g.result = &Nav{Tag: TagResult, Payload: Payload{
		Name:        g.player,
		BestFastMs:  &fast,
		BestCloseCM: closest,
	}}
}

func (g *Game) report(now time.Time) {
	ls := g.link.Status()
	g.svc.Metrics.SetSensorConnected(ls.Connected)
	if g.svc.Tracker == nil {
		return
	}
	g.svc.Tracker.UpdateGame(status.GameFrom(g.machine.State(), now), g.machine.EventCountsSnapshot())
	g.svc.Tracker.SetSensor(status.Subsystem{Connected: ls.Connected, Name: ls.Port, Message: ls.Message})
	cs := g.feed.Status()
	g.svc.Tracker.SetCamera(status.Subsystem{Connected: cs.Connected, Name: fmt.Sprint(cs.Index), Message: cs.Message})
}

func (g *Game) Draw(c Canvas) {
	st := g.machine.State()
	c.Text(marginX, 30, "PLAYER "+g.player, StyleTitle)

	elapsed := g.now.Sub(st.SessionStart)
	if st.Completed && st.HasBest {
		elapsed = time.Duration(st.BestTimeMs) * time.Millisecond
	}
	c.Text(marginX, 30+lineHeight, fmt.Sprintf("Time %.2fs", elapsed.Seconds()), StyleNormal)

	state, style := "WAITING", StyleDim
	switch {
	case st.Completed:
		state, style = "DONE", StyleGood
	case st.Armed:
		state, style = "ARMED", StyleGood
	}
	c.Text(marginX, 30+2*lineHeight, state, style)

	latest := "--"
	if st.HasLatest {
		latest = fmt.Sprintf("%.1f cm", st.LatestCM)
	}
	closest := "--"
	if !math.IsInf(st.MinDistanceCM, 0) {
		closest = fmt.Sprintf("%.1f cm", st.MinDistanceCM)
	}
	c.Text(marginX, 30+3*lineHeight, "Distance "+latest, StyleNormal)
	c.Text(marginX, 30+4*lineHeight, "Closest  "+closest, StyleNormal)

	ls := g.link.Status()
	c.Text(marginX, 30+5*lineHeight, "Sensor: "+ls.Message, subsystemStyle(ls.Connected))

	g.drawPreview(c, 420, 60, 540, 400)
	c.Text(marginX, 640, "r reconnect  p next port  m mirror  n reset  Esc title", StyleDim)
}

func (g *Game) drawPreview(c Canvas, x, y, w, h float64) {
	c.Box(x, y, w, h, StyleDim)
	cs := g.feed.Status()
	if !cs.Connected || !g.hasFrame {
		c.Text(x+20, y+h/2, cs.Message, subsystemStyle(cs.Connected))
		return
	}
	label := fmt.Sprintf("camera %d  %dx%d  #%d", cs.Index, g.frame.Width, g.frame.Height, g.frame.Seq)
	if g.mirror {
		label += "  mirrored"
	}
	c.Text(x+20, y+h/2, label, StyleNormal)
}

func subsystemStyle(connected bool) Style {
	if connected {
		return StyleGood
	}
	return StyleBad
}
