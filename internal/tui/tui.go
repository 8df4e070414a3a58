// Package tui is the terminal front end. It maps terminal cells to
// physical pixels, keeps the viewport in step with the terminal size and
// turns tcell key events into screen keys.
package tui

import (
	"fmt"
	"log"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/sweeney/reaction-arcade/internal/config"
	"github.com/sweeney/reaction-arcade/internal/screen"
	"github.com/sweeney/reaction-arcade/internal/viewport"
)

// Nominal pixel size of one terminal cell.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Terminal owns the tcell screen.
type Terminal struct {
	screen     tcell.Screen
	vp         *viewport.Viewport
	minW, minH int
	events     chan tcell.Event
}

// New initialises the terminal.
func New(cfg config.Config) (*Terminal, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	return newTerminal(s, cfg), nil
}

func newTerminal(s tcell.Screen, cfg config.Config) *Terminal {
	t := &Terminal{
		screen: s,
		vp:     viewport.New(cfg.BaseW, cfg.BaseH),
		minW:   cfg.MinW,
		minH:   cfg.MinH,
		events: make(chan tcell.Event, 64),
	}
	t.resize()
	go t.pump()
	return t
}

func (t *Terminal) pump() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			close(t.events)
			return
		}
		t.events <- ev
	}
}

// Viewport returns the current layout.
func (t *Terminal) Viewport() *viewport.Viewport { return t.vp }

// Poll drains pending input without blocking. Resize events update the
// layout. interrupted is set when Ctrl+C was pressed.
func (t *Terminal) Poll() (keys []screen.Key, interrupted bool) {
	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				return keys, interrupted
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isInterrupt(ev) {
					interrupted = true
					continue
				}
				if k, ok := KeyFromEvent(ev); ok {
					keys = append(keys, k)
				}
			case *tcell.EventResize:
				t.resize()
			}
		default:
			return keys, interrupted
		}
	}
}

// resize clamps the terminal's pixel size to the minimum window and
// recomputes the layout.
func (t *Terminal) resize() {
	cols, rows := t.screen.Size()
	w, h := viewport.Clamp(cols*CellWidth, rows*CellHeight, t.minW, t.minH)
	changed, err := t.vp.UpdateLayout(w, h)
	if err != nil {
		log.Printf("tui: %v", err)
		return
	}
	if changed {
		log.Printf("tui: layout %dx%d scale %.3f", w, h, t.vp.Scale())
		t.screen.Sync()
	}
}

// Render clears the terminal, runs draw and shows the result.
func (t *Terminal) Render(draw func(screen.Canvas)) {
	t.screen.Clear()
	draw(&canvas{screen: t.screen, vp: t.vp})
	t.screen.Show()
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.screen.Fini()
}

func isInterrupt(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyCtrlC ||
		(ev.Key() == tcell.KeyRune && ev.Rune() == 'c' && ev.Modifiers()&tcell.ModCtrl != 0)
}

// KeyFromEvent converts a tcell key event. Keys the screens do not use
// are dropped.
func KeyFromEvent(ev *tcell.EventKey) (screen.Key, bool) {
	mod := ev.Modifiers()
	k := screen.Key{
		Shift: mod&tcell.ModShift != 0,
		Ctrl:  mod&tcell.ModCtrl != 0,
		Meta:  mod&(tcell.ModAlt|tcell.ModMeta) != 0,
	}
	switch ev.Key() {
	case tcell.KeyRune:
		k.Code = screen.KeyRune
		k.Rune = ev.Rune()
		if unicode.IsUpper(k.Rune) {
			k.Shift = true
		}
	case tcell.KeyEnter:
		k.Code = screen.KeyEnter
	case tcell.KeyEscape:
		k.Code = screen.KeyEscape
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		k.Code = screen.KeyBackspace
		k.Ctrl = false
	case tcell.KeyDelete:
		k.Code = screen.KeyDelete
	case tcell.KeyUp:
		k.Code = screen.KeyUp
	case tcell.KeyDown:
		k.Code = screen.KeyDown
	case tcell.KeyLeft:
		k.Code = screen.KeyLeft
	case tcell.KeyRight:
		k.Code = screen.KeyRight
	case tcell.KeyTab:
		k.Code = screen.KeyTab
	default:
		if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
			k.Code = screen.KeyRune
			k.Rune = rune('a' + ev.Key() - tcell.KeyCtrlA)
			k.Ctrl = true
			return k, true
		}
		return screen.Key{}, false
	}
	return k, true
}

// canvas draws logical coordinates onto terminal cells.
type canvas struct {
	screen tcell.Screen
	vp     *viewport.Viewport
}

func (c *canvas) cell(x, y float64) (int, int) {
	return c.vp.ToPhysical(x) / CellWidth, c.vp.ToPhysical(y) / CellHeight
}

func (c *canvas) Text(x, y float64, s string, st screen.Style) {
	col, row := c.cell(x, y)
	style := styleFor(st)
	for _, r := range s {
		c.screen.SetContent(col, row, r, nil, style)
		col += max(1, runewidth.RuneWidth(r))
	}
}

func (c *canvas) Box(x, y, w, h float64, st screen.Style) {
	x0, y0 := c.cell(x, y)
	x1, y1 := c.cell(x+w, y+h)
	if x1-x0 < 2 || y1-y0 < 2 {
		c.Fill(x, y, w, h, st)
		return
	}
	style := styleFor(st)
	for col := x0 + 1; col < x1; col++ {
		c.screen.SetContent(col, y0, tcell.RuneHLine, nil, style)
		c.screen.SetContent(col, y1, tcell.RuneHLine, nil, style)
	}
	for row := y0 + 1; row < y1; row++ {
		c.screen.SetContent(x0, row, tcell.RuneVLine, nil, style)
		c.screen.SetContent(x1, row, tcell.RuneVLine, nil, style)
	}
	c.screen.SetContent(x0, y0, tcell.RuneULCorner, nil, style)
	c.screen.SetContent(x1, y0, tcell.RuneURCorner, nil, style)
	c.screen.SetContent(x0, y1, tcell.RuneLLCorner, nil, style)
	c.screen.SetContent(x1, y1, tcell.RuneLRCorner, nil, style)
}

// Fill paints at least one cell.
func (c *canvas) Fill(x, y, w, h float64, st screen.Style) {
	x0, y0 := c.cell(x, y)
	x1, y1 := c.cell(x+w, y+h)
	x1 = max(x1, x0+1)
	y1 = max(y1, y0+1)
	style := styleFor(st).Reverse(true)
	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col++ {
			c.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func styleFor(st screen.Style) tcell.Style {
	base := tcell.StyleDefault
	switch st {
	case screen.StyleTitle:
		return base.Foreground(tcell.ColorYellow).Bold(true)
	case screen.StyleDim:
		return base.Foreground(tcell.ColorGray)
	case screen.StyleGood:
		return base.Foreground(tcell.ColorGreen)
	case screen.StyleBad:
		return base.Foreground(tcell.ColorRed)
	case screen.StyleSelected:
		return base.Foreground(tcell.ColorWhite).Reverse(true)
	}
	return base.Foreground(tcell.ColorWhite)
}
