package screen

import (
	"log"
	"time"
)

type edge struct {
	from Kind
	tag  Tag
}

// transitions is the complete navigation table. Pairs not listed are ignored.
var transitions = map[edge]Kind{
	{KindTitle, TagGame}:   KindGame,
	{KindTitle, TagAdmin}:  KindAdmin,
	{KindGame, TagResult}:  KindResult,
	{KindGame, TagTitle}:   KindTitle,
	{KindAdmin, TagTitle}:  KindTitle,
	{KindResult, TagTitle}: KindTitle,
}

// Route returns the target of tag from screen kind, if the table has one.
func Route(from Kind, tag Tag) (Kind, bool) {
	to, ok := transitions[edge{from, tag}]
	return to, ok
}

// Factory builds a screen from the payload of the request that leads to it.
type Factory func(p Payload) Screen

// Controller owns the current screen. It is not safe for concurrent use;
// the frame loop is its only caller.
type Controller struct {
	factories map[Kind]Factory
	current   Screen
}

// NewController wires the four arcade screens to svc.
func NewController(svc *Services) *Controller {
	return newController(map[Kind]Factory{
		KindTitle:  func(Payload) Screen { return NewTitle(svc) },
		KindGame:   func(p Payload) Screen { return NewGame(svc, p.Name) },
		KindAdmin:  func(Payload) Screen { return NewAdmin(svc) },
		KindResult: func(p Payload) Screen { return NewResult(svc, p) },
	})
}

func newController(factories map[Kind]Factory) *Controller {
	return &Controller{factories: factories}
}

// Start enters the title screen.
func (c *Controller) Start(now time.Time) {
	c.switchTo(KindTitle, Payload{}, now)
}

// Current returns the active screen.
func (c *Controller) Current() Screen {
	return c.current
}

// HandleKey forwards a key to the active screen and applies the result.
// It reports whether the process should quit.
func (c *Controller) HandleKey(k Key, now time.Time) bool {
	if c.current == nil {
		return false
	}
	return c.apply(c.current.HandleKey(k, now), now)
}

// Update advances the active screen by one frame. It reports whether the
// process should quit.
func (c *Controller) Update(now time.Time) bool {
	if c.current == nil {
		return false
	}
	return c.apply(c.current.Update(now), now)
}

// Draw renders the active screen.
func (c *Controller) Draw(cv Canvas) {
	if c.current != nil {
		c.current.Draw(cv)
	}
}

// Close exits the active screen.
func (c *Controller) Close() {
	if c.current != nil {
		c.current.Exit()
		c.current = nil
	}
}

func (c *Controller) apply(nav *Nav, now time.Time) bool {
	if nav == nil {
		return false
	}
	if nav.Tag == TagQuit {
		return true
	}
	c.Request(*nav, now)
	return false
}

// Request performs a table transition from the current screen. Unknown
// pairs are logged and ignored. It reports whether the screen changed.
func (c *Controller) Request(nav Nav, now time.Time) bool {
	if c.current == nil {
		return false
	}
	from := c.current.Kind()
	to, ok := Route(from, nav.Tag)
	if !ok {
		log.Printf("screen: ignoring %q from %s", nav.Tag, from)
		return false
	}
	if _, ok := c.factories[to]; !ok {
		log.Printf("screen: no factory for %s", to)
		return false
	}
	c.switchTo(to, nav.Payload, now)
	return true
}

func (c *Controller) switchTo(to Kind, p Payload, now time.Time) {
	next := c.factories[to](p)
	if c.current != nil {
		log.Printf("screen: %s -> %s", c.current.Kind(), to)
		c.current.Exit()
	}
	c.current = next
	next.Enter(now)
}
