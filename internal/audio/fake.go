package audio

import "sync"

// FakePlayer records played cues for tests.
type FakePlayer struct {
	mu     sync.Mutex
	Cues   []Cue
	Closed bool
}

func (f *FakePlayer) Play(c Cue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cues = append(f.Cues, c)
}

func (f *FakePlayer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Played returns a copy of the recorded cues.
func (f *FakePlayer) Played() []Cue {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Cue, len(f.Cues))
	copy(out, f.Cues)
	return out
}
