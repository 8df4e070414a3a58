package screen

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/sweeney/reaction-arcade/internal/leaderboard"
)

const (
	maxNameLen = 16
	boardSize  = 5
)

// Title takes the player's name and shows the top boards.
type Title struct {
	svc     *Services
	name    []rune
	fast    []leaderboard.Record
	closest []leaderboard.Record
	message string
}

// NewTitle creates the title screen.
func NewTitle(svc *Services) *Title {
	return &Title{svc: svc}
}

func (t *Title) Kind() Kind { return KindTitle }

func (t *Title) Enter(now time.Time) {
	t.svc.setScreen(KindTitle)
	recs, msg := t.svc.loadBoard()
	t.fast = leaderboard.FastBoard(recs, boardSize)
	t.closest = leaderboard.CloseBoard(recs, boardSize)
	t.message = msg
}

func (t *Title) Exit() {}

// Name returns the name typed so far.
func (t *Title) Name() string { return string(t.name) }

func (t *Title) HandleKey(k Key, now time.Time) *Nav {
	switch {
	case k.Code == KeyEscape:
		return navTo(TagQuit)
	case isAdminChord(k):
		return navTo(TagAdmin)
	case k.Code == KeyEnter:
		return t.submit(now)
	case k.Code == KeyBackspace:
		if len(t.name) > 0 {
			t.name = t.name[:len(t.name)-1]
		}
	case k.Code == KeyRune && !k.Ctrl && !k.Meta && unicode.IsPrint(k.Rune):
		if len(t.name) < maxNameLen {
			t.name = append(t.name, k.Rune)
		}
	}
	return nil
}

// isAdminChord matches Ctrl+Shift+A and Cmd/Alt+Shift+A.
func isAdminChord(k Key) bool {
	return k.Code == KeyRune && (k.Ctrl || k.Meta) && k.Shift && unicode.ToLower(k.Rune) == 'a'
}

func (t *Title) submit(now time.Time) *Nav {
	name := strings.TrimSpace(string(t.name))
	if name == "" {
		t.message = "enter a name to play"
		return nil
	}
	if err := leaderboard.SaveSession(t.svc.Config.SessionPath(), name, now); err != nil {
		log.Printf("title: %v", err)
	}
	return &Nav{Tag: TagGame, Payload: Payload{Name: name}}
}

func (t *Title) Update(now time.Time) *Nav { return nil }

func (t *Title) Draw(c Canvas) {
	c.Text(marginX, 40, "REACTION ARCADE", StyleTitle)
	c.Text(marginX, 120, "Name: "+string(t.name)+"_", StyleNormal)
	c.Text(marginX, 120+lineHeight, "Enter to play, Esc to quit", StyleDim)
	if t.message != "" {
		c.Text(marginX, 120+2*lineHeight, t.message, StyleBad)
	}

	y := 280.0
	c.Text(marginX, y, "FASTEST", StyleTitle)
	c.Text(520, y, "CLOSEST", StyleTitle)
	for i, r := range t.fast {
		c.Text(marginX, y+float64(i+1)*lineHeight,
			fmt.Sprintf("%d. %-16s %6.2fs", i+1, r.Name, float64(*r.BestFastMs)/1000), StyleNormal)
	}
	for i, r := range t.closest {
		c.Text(520, y+float64(i+1)*lineHeight,
			fmt.Sprintf("%d. %-16s %6.1fcm", i+1, r.Name, *r.BestCloseCM), StyleNormal)
	}
}
