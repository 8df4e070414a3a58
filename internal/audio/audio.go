// Package audio plays short tones for attempt outcomes.
package audio

import (
	"time"

	"github.com/sweeney/reaction-arcade/internal/logic"
)

// Cue identifies a sound effect.
type Cue int

const (
	CueArmed Cue = iota
	CueCompleted
	CueMissed
	CueTimedOut
)

func (c Cue) String() string {
	switch c {
	case CueArmed:
		return "armed"
	case CueCompleted:
		return "completed"
	case CueMissed:
		return "missed"
	case CueTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Note is one tone in a cue. A zero Freq is a rest.
type Note struct {
	Freq     float64
	Duration time.Duration
}

// Notes returns the tone sequence for a cue.
func Notes(c Cue) []Note {
	switch c {
	case CueArmed:
		return []Note{{Freq: 660, Duration: 60 * time.Millisecond}}
	case CueCompleted:
		return []Note{
			{Freq: 880, Duration: 80 * time.Millisecond},
			{Freq: 0, Duration: 20 * time.Millisecond},
			{Freq: 1320, Duration: 120 * time.Millisecond},
		}
	case CueMissed:
		return []Note{{Freq: 220, Duration: 150 * time.Millisecond}}
	case CueTimedOut:
		return []Note{
			{Freq: 330, Duration: 100 * time.Millisecond},
			{Freq: 220, Duration: 150 * time.Millisecond},
		}
	}
	return nil
}

// ForEvent maps an attempt event to a cue. Reset events are silent.
func ForEvent(t logic.EventType) (Cue, bool) {
	switch t {
	case logic.EventArmed:
		return CueArmed, true
	case logic.EventCompleted:
		return CueCompleted, true
	case logic.EventMissed:
		return CueMissed, true
	case logic.EventTimedOut:
		return CueTimedOut, true
	}
	return 0, false
}

// Player plays cues without blocking the caller.
type Player interface {
	Play(c Cue)
	Close() error
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Cue)     {}
func (Nop) Close() error { return nil }
