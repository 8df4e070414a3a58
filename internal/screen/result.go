package screen

import (
	"fmt"
	"time"

	"github.com/sweeney/reaction-arcade/internal/leaderboard"
)

// Result shows the finished session and the player's rank.
type Result struct {
	svc     *Services
	payload Payload
	rank    int
	ranked  bool
	message string
}

// NewResult creates the result screen for a finished session.
func NewResult(svc *Services, p Payload) *Result {
	return &Result{svc: svc, payload: p}
}

func (r *Result) Kind() Kind { return KindResult }

// Rank returns the player's 1-based position on the fastest board.
func (r *Result) Rank() (int, bool) { return r.rank, r.ranked }

// Score returns the session's score, or zero without a time.
func (r *Result) Score() int64 {
	if r.payload.BestFastMs == nil {
		return 0
	}
	return leaderboard.Score(*r.payload.BestFastMs)
}

func (r *Result) Enter(now time.Time) {
	r.svc.setScreen(KindResult)
	recs, msg := r.svc.loadBoard()
	r.message = msg
	r.rank, r.ranked = leaderboard.Rank(recs, r.payload.Name)
}

func (r *Result) Exit() {}

func (r *Result) HandleKey(k Key, now time.Time) *Nav {
	if k.Code == KeyEnter || k.Code == KeyEscape || k.plain(' ') {
		return navTo(TagTitle)
	}
	return nil
}

func (r *Result) Update(now time.Time) *Nav { return nil }

// Lines returns the text shown on the result screen.
func (r *Result) Lines() []string {
	lines := []string{"Player: " + r.payload.Name}
	if r.payload.BestFastMs != nil {
		lines = append(lines, fmt.Sprintf("Time: %.2f s", float64(*r.payload.BestFastMs)/1000))
	} else {
		lines = append(lines, "Time: --")
	}
	if r.payload.BestCloseCM != nil {
		lines = append(lines, fmt.Sprintf("Closest: %.1f cm", *r.payload.BestCloseCM))
	}
	lines = append(lines, fmt.Sprintf("Score: %d", r.Score()))
	if r.ranked {
		lines = append(lines, fmt.Sprintf("Rank: #%d", r.rank))
	} else {
		lines = append(lines, "Rank: --")
	}
	return lines
}

func (r *Result) Draw(c Canvas) {
	c.Text(marginX, 40, "RESULT", StyleTitle)
	for i, l := range r.Lines() {
		c.Text(marginX, 120+float64(i)*lineHeight, l, StyleNormal)
	}
	if r.message != "" {
		c.Text(marginX, 600, r.message, StyleBad)
	}
	c.Text(marginX, 640, "Enter, Space or Esc to continue", StyleDim)
}
