package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Beeper plays cues through the system speaker.
type Beeper struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	closed bool
}

// NewBeeper initialises the speaker. volume is in (0, 1].
func NewBeeper(volume float64) (*Beeper, error) {
	if volume <= 0 || volume > 1 {
		volume = 1
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}
	b := &Beeper{mixer: &beep.Mixer{}, volume: volume}
	speaker.Play(b.mixer)
	return b, nil
}

// Play queues the cue on the mixer.
func (b *Beeper) Play(c Cue) {
	s, err := Stream(sampleRate, Notes(c), b.volume)
	if err != nil || s == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	speaker.Lock()
	b.mixer.Add(s)
	speaker.Unlock()
}

// Close stops playback.
func (b *Beeper) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	speaker.Clear()
	speaker.Close()
	return nil
}

// Stream builds a finite streamer for a note sequence.
func Stream(sr beep.SampleRate, notes []Note, volume float64) (beep.Streamer, error) {
	if len(notes) == 0 {
		return nil, nil
	}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		samples := sr.N(n.Duration)
		if n.Freq <= 0 {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		tone, err := generators.SineTone(sr, n.Freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.0fHz: %w", n.Freq, err)
		}
		parts = append(parts, beep.Take(samples, tone))
	}
	return &effects.Volume{
		Streamer: beep.Seq(parts...),
		Base:     2,
		Volume:   math.Log2(volume),
	}, nil
}
