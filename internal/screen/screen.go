// Package screen implements the arcade's screens and the controller that
// moves between them. Screens never switch themselves: they return a Nav
// value from HandleKey or Update and the Controller looks it up in a fixed
// transition table.
package screen

import "time"

// Kind names a screen.
type Kind string

const (
	KindTitle  Kind = "title"
	KindGame   Kind = "game"
	KindAdmin  Kind = "admin"
	KindResult Kind = "result"
)

// Tag is a navigation request name.
type Tag string

const (
	TagGame   Tag = "game"
	TagAdmin  Tag = "admin"
	TagResult Tag = "result"
	TagTitle  Tag = "title"
	// TagQuit ends the process. It is consumed by the frame loop and never
	// reaches the transition table.
	TagQuit Tag = "quit"
)

// Payload carries data from one screen to the next.
type Payload struct {
	Name        string
	BestFastMs  *int64
	BestCloseCM *float64
}

// Nav is a navigation request returned by a screen.
type Nav struct {
	Tag     Tag
	Payload Payload
}

func navTo(tag Tag) *Nav { return &Nav{Tag: tag} }

// KeyCode identifies a key. Printable input uses KeyRune.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyTab
)

// Key is one key press.
type Key struct {
	Code  KeyCode
	Rune  rune
	Shift bool
	Ctrl  bool
	Meta  bool // Alt or Cmd
}

// Rune returns a plain rune key.
func Rune(r rune) Key { return Key{Code: KeyRune, Rune: r} }

// Press returns a non-rune key.
func Press(code KeyCode) Key { return Key{Code: code} }

// plain reports whether k is the unmodified rune r.
func (k Key) plain(r rune) bool {
	return k.Code == KeyRune && k.Rune == r && !k.Ctrl && !k.Meta
}

// Style selects a text colour.
type Style int

const (
	StyleNormal Style = iota
	StyleTitle
	StyleDim
	StyleGood
	StyleBad
	StyleSelected
)

// Canvas draws in logical coordinates on the base canvas.
type Canvas interface {
	Text(x, y float64, s string, st Style)
	Box(x, y, w, h float64, st Style)
	Fill(x, y, w, h float64, st Style)
}

// Screen is one state of the arcade.
type Screen interface {
	Kind() Kind
	// Enter acquires the screen's resources. Device failures are shown on
	// screen rather than returned.
	Enter(now time.Time)
	// Exit releases every resource opened by Enter, ignoring errors.
	Exit()
	HandleKey(k Key, now time.Time) *Nav
	Update(now time.Time) *Nav
	Draw(c Canvas)
}

// Layout of the logical canvas.
const (
	marginX    = 40.0
	lineHeight = 32.0
)
