package screen

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/reaction-arcade/internal/camera"
	"github.com/sweeney/reaction-arcade/internal/leaderboard"
	"github.com/sweeney/reaction-arcade/internal/logic"
	"github.com/sweeney/reaction-arcade/internal/sensor"
)

// AdminTab is a page of the admin screen.
type AdminTab int

const (
	TabSerial AdminTab = iota
	TabCamera
	TabLeaderboard
)

func (t AdminTab) String() string {
	switch t {
	case TabSerial:
		return "Serial"
	case TabCamera:
		return "Camera"
	case TabLeaderboard:
		return "Leaderboard"
	}
	return "?"
}

const (
	historySize    = 50
	maxCameraIndex = 9
)

// Admin lets an operator check devices and maintain the leaderboard.
type Admin struct {
	svc *Services
	tab AdminTab

	link    *sensor.Link
	port    string
	history []float64

	feed  *camera.Feed
	frame camera.Frame
	index int

	records  []leaderboard.Record
	selected int
	message  string
}

// NewAdmin creates the admin screen.
func NewAdmin(svc *Services) *Admin {
	return &Admin{svc: svc}
}

func (a *Admin) Kind() Kind { return KindAdmin }

// Tab returns the visible tab.
func (a *Admin) Tab() AdminTab { return a.tab }

// History returns the recent distance samples, oldest first.
func (a *Admin) History() []float64 { return a.history }

// Records returns the leaderboard rows as shown.
func (a *Admin) Records() []leaderboard.Record { return a.records }

// Selected returns the highlighted leaderboard row.
func (a *Admin) Selected() int { return a.selected }

// CameraIndex returns the selected camera device.
func (a *Admin) CameraIndex() int { return a.index }

func (a *Admin) Enter(now time.Time) {
	a.svc.setScreen(KindAdmin)
	a.port = a.svc.Port
	a.index = a.svc.CameraIndex
	a.link = sensor.NewLink(a.svc.sensorSource(a.port))
	a.feed = camera.NewFeed(a.svc.Camera, a.index, a.svc.Config.CameraInterval())
	a.reload()
}

func (a *Admin) Exit() {
	if a.link != nil {
		a.link.Close()
	}
	if a.feed != nil {
		a.feed.Close()
	}
}

func (a *Admin) HandleKey(k Key, now time.Time) *Nav {
	switch {
	case k.Code == KeyEscape:
		return navTo(TagTitle)
	case k.Code == KeyLeft:
		if a.tab > TabSerial {
			a.setTab(a.tab - 1)
		}
		return nil
	case k.Code == KeyRight:
		if a.tab < TabLeaderboard {
			a.setTab(a.tab + 1)
		}
		return nil
	case k.plain('1'):
		a.setTab(TabSerial)
		return nil
	case k.plain('2'):
		a.setTab(TabCamera)
		return nil
	case k.plain('3'):
		a.setTab(TabLeaderboard)
		return nil
	}

	switch a.tab {
	case TabSerial:
		a.serialKey(k)
	case TabCamera:
		a.cameraKey(k)
	case TabLeaderboard:
		a.boardKey(k)
	}
	return nil
}

func (a *Admin) setTab(t AdminTab) {
	a.tab = t
	if t == TabLeaderboard {
		a.reload()
	}
}

func (a *Admin) serialKey(k Key) {
	switch {
	case k.plain('c'):
		a.connectSerial(a.port)
	case k.plain('d'):
		a.link.Close()
	case k.plain('p'):
		next, ok := sensor.NextCandidate(a.svc.candidates(), a.port)
		if !ok {
			a.message = "no serial ports found"
			return
		}
		a.connectSerial(next)
	}
}

func (a *Admin) connectSerial(port string) {
	a.port = port
	a.link.Close()
	a.link = sensor.NewLink(a.svc.sensorSource(port))
	if err := a.link.Connect(); err != nil {
		a.message = a.link.Status().Message
		return
	}
	a.message = ""
	a.port = a.link.Status().Port
	a.svc.savePort(a.port)
}

func (a *Admin) cameraKey(k Key) {
	switch {
	case k.plain('c'):
		a.connectCamera(a.index)
	case k.plain('d'):
		a.feed.Close()
	case k.Code == KeyUp:
		a.connectCamera(min(maxCameraIndex, a.index+1))
	case k.Code == KeyDown:
		a.connectCamera(max(0, a.index-1))
	case k.Code == KeyRune && !k.Ctrl && !k.Meta && k.Rune >= '0' && k.Rune <= '9':
		a.connectCamera(int(k.Rune - '0'))
	}
}

func (a *Admin) connectCamera(index int) {
	a.index = index
	a.feed.SetIndex(index)
	if err := a.feed.Connect(); err != nil {
		a.message = a.feed.Status().Message
		return
	}
	a.message = ""
	a.svc.saveCamera(index)
}

func (a *Admin) boardKey(k Key) {
	if a.svc.Board == nil {
		return
	}
	switch {
	case k.Code == KeyUp:
		a.selected = max(0, a.selected-1)
	case k.Code == KeyDown:
		a.selected = max(0, min(len(a.records)-1, a.selected+1))
	case k.Code == KeyDelete || k.Code == KeyBackspace:
		a.deleteSelected()
	case k.plain('r'):
		a.reload()
	case k.plain('x'):
		if err := a.svc.Board.Reset(); err != nil {
			log.Printf("leaderboard: reset: %v", err)
			a.svc.Metrics.LeaderboardError()
			a.message = "reset failed"
		}
		a.reload()
	}
}

func (a *Admin) deleteSelected() {
	if a.selected < 0 || a.selected >= len(a.records) {
		return
	}
	name := a.records[a.selected].Name
	err := a.svc.Board.Delete(name)
	if err != nil && !errors.Is(err, leaderboard.ErrNotFound) {
		log.Printf("leaderboard: delete %q: %v", name, err)
		a.svc.Metrics.LeaderboardError()
		a.message = "delete failed"
	}
	a.reload()
}

// reload reads the board sorted fastest first; players without a time follow.
func (a *Admin) reload() {
	recs, msg := a.svc.loadBoard()
	a.message = msg
	rows := leaderboard.FastBoard(recs, -1)
	for _, r := range recs {
		if r.BestFastMs == nil {
			rows = append(rows, r)
		}
	}
	a.records = rows
	if a.selected >= len(rows) {
		a.selected = max(0, len(rows)-1)
	}
}

func (a *Admin) Update(now time.Time) *Nav {
	switch a.tab {
	case TabSerial:
		for _, line := range a.link.Poll() {
			for _, ev := range logic.ParseLine(line) {
				if ev.Kind == logic.KindDistance {
					a.record(ev.DistanceCM)
				}
			}
		}
	case TabCamera:
		if f, ok := a.feed.Poll(now); ok {
			a.frame = f
		}
	}
	return nil
}

func (a *Admin) record(cm float64) {
	a.history = append(a.history, cm)
	if len(a.history) > historySize {
		a.history = a.history[len(a.history)-historySize:]
	}
}

func (a *Admin) Draw(c Canvas) {
	c.Text(marginX, 30, "ADMIN", StyleTitle)
	x := marginX
	for t := TabSerial; t <= TabLeaderboard; t++ {
		st := StyleDim
		if t == a.tab {
			st = StyleSelected
		}
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		c.Text(x, 30+lineHeight, label, st)
		x += 200
	}

	y := 30 + 3*lineHeight
	switch a.tab {
	case TabSerial:
		ls := a.link.Status()
		c.Text(marginX, y, "Port: "+orNone(a.port), StyleNormal)
		c.Text(marginX, y+lineHeight, ls.Message, subsystemStyle(ls.Connected))
		if n := len(a.history); n > 0 {
			c.Text(marginX, y+2*lineHeight, fmt.Sprintf("Distance %.1f cm", a.history[n-1]), StyleNormal)
			a.drawHistory(c, marginX, y+3*lineHeight, 900, 200)
		}
		c.Text(marginX, 640, "c connect  d disconnect  p next port  Esc title", StyleDim)
	case TabCamera:
		cs := a.feed.Status()
		c.Text(marginX, y, fmt.Sprintf("Camera index: %d", a.index), StyleNormal)
		c.Text(marginX, y+lineHeight, cs.Message, subsystemStyle(cs.Connected))
		if cs.Connected && a.frame.Seq > 0 {
			c.Text(marginX, y+2*lineHeight, fmt.Sprintf("%dx%d frame #%d", a.frame.Width, a.frame.Height, a.frame.Seq), StyleNormal)
		}
		c.Text(marginX, 640, "c connect  d disconnect  up/down or 0-9 index  Esc title", StyleDim)
	case TabLeaderboard:
		for i, r := range a.records {
			st := StyleNormal
			if i == a.selected {
				st = StyleSelected
			}
			c.Text(marginX, y+float64(i)*lineHeight, formatRow(r), st)
		}
		c.Text(marginX, 640, "up/down select  Del remove  r reload  x reset  Esc title", StyleDim)
	}
	if a.message != "" {
		c.Text(marginX, 600, a.message, StyleBad)
	}
}

// drawHistory plots the history as a bar per sample.
func (a *Admin) drawHistory(c Canvas, x, y, w, h float64) {
	c.Box(x, y, w, h, StyleDim)
	peak := 1.0
	for _, v := range a.history {
		peak = max(peak, v)
	}
	step := w / historySize
	for i, v := range a.history {
		bh := h * v / peak
		c.Fill(x+float64(i)*step, y+h-bh, step, bh, StyleGood)
	}
}

func formatRow(r leaderboard.Record) string {
	fast, closest := "--", "--"
	if r.BestFastMs != nil {
		fast = fmt.Sprintf("%.2fs", float64(*r.BestFastMs)/1000)
	}
	if r.BestCloseCM != nil {
		closest = fmt.Sprintf("%.1fcm", *r.BestCloseCM)
	}
	return fmt.Sprintf("%-16s %8s %8s %5d", r.Name, fast, closest, r.BestScore)
}

func orNone(s string) string {
	if s == "" {
		return "(auto)"
	}
	return s
}
