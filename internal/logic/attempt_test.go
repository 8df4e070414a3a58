package logic

import (
	"math"
	"testing"
	"time"
)

var sessionStart = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time {
	return sessionStart.Add(d)
}

func newTestMachine() *Machine {
	return NewMachine(DefaultThresholds(), sessionStart)
}

func TestNewMachine(t *testing.T) {
	m := newTestMachine()
	s := m.State()
	if s.Armed || s.InAttempt || s.Completed || s.HasBest {
		t.Errorf("new machine should be idle, got %+v", s)
	}
	if !s.SessionStart.Equal(sessionStart) {
		t.Errorf("expected session start %v, got %v", sessionStart, s.SessionStart)
	}
	if !math.IsInf(s.MinDistanceCM, 1) {
		t.Errorf("expected +Inf min distance, got %v", s.MinDistanceCM)
	}
}

func TestScenarioAArmThenFinish(t *testing.T) {
	m := newTestMachine()

	for i, cm := range []float64{40, 30} {
		if events := m.OnDistance(cm, at(time.Duration(i+1)*100*time.Millisecond)); len(events) != 0 {
			t.Fatalf("sample %v: expected no events, got %+v", cm, events)
		}
		if m.State().Armed {
			t.Fatalf("should not arm at %vcm", cm)
		}
	}

	events := m.OnDistance(25, at(300*time.Millisecond))
	if len(events) != 1 || events[0].Type != EventArmed {
		t.Fatalf("expected ARMED event, got %+v", events)
	}
	if events[0].DistanceCM != 25 {
		t.Errorf("expected armed distance 25, got %v", events[0].DistanceCM)
	}
	if s := m.State(); !s.Armed || !s.InAttempt {
		t.Fatalf("expected armed and in attempt, got %+v", s)
	}

	events = m.OnProximity(at(900 * time.Millisecond))
	if len(events) != 1 || events[0].Type != EventCompleted {
		t.Fatalf("expected COMPLETED event, got %+v", events)
	}
	if events[0].ElapsedMs != 900 || events[0].BestTimeMs != 900 {
		t.Errorf("expected elapsed=best=900, got %+v", events[0])
	}
	if events[0].MinDistanceCM != 25 {
		t.Errorf("expected completing attempt min distance 25, got %v", events[0].MinDistanceCM)
	}

	s := m.State()
	if !s.Completed {
		t.Error("expected completed")
	}
	if !s.Armed {
		t.Error("armed should remain true after completion")
	}
	if best, ok := m.Best(); !ok || best != 900 {
		t.Errorf("expected best 900, got %d (%v)", best, ok)
	}
	if s.MinDistanceCM != 25 {
		t.Errorf("expected min distance 25, got %v", s.MinDistanceCM)
	}
}

func TestScenarioBProximityWithoutArming(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(50, at(100*time.Millisecond))

	events := m.OnProximity(at(200 * time.Millisecond))
	if len(events) != 1 || events[0].Type != EventMissed {
		t.Fatalf("expected MISSED event, got %+v", events)
	}
	if events[0].MinDistanceCM != 50 {
		t.Errorf("expected missed attempt min distance 50, got %v", events[0].MinDistanceCM)
	}

	s := m.State()
	if s.Completed || s.HasBest {
		t.Errorf("expected no score change, got %+v", s)
	}
	if !math.IsInf(s.MinDistanceCM, 1) {
		t.Errorf("soft reset should clear min distance, got %v", s.MinDistanceCM)
	}
	if !s.SessionStart.Equal(sessionStart) {
		t.Error("soft reset must not move session start")
	}
}

func TestScenarioCTimeout(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(25, at(100*time.Millisecond))

	gap := DefaultAttemptGap + 100*time.Millisecond
	events := m.CheckTimeout(at(100*time.Millisecond + gap))
	if len(events) != 1 || events[0].Type != EventTimedOut {
		t.Fatalf("expected TIMED_OUT event, got %+v", events)
	}
	if events[0].MinDistanceCM != 25 {
		t.Errorf("expected timed out attempt min distance 25, got %v", events[0].MinDistanceCM)
	}

	s := m.State()
	if s.InAttempt || s.Armed {
		t.Errorf("expected idle after timeout, got %+v", s)
	}
	if s.HasBest {
		t.Error("best time should remain unset")
	}
}

func TestTimeoutBoundary(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(20, at(0))

	if events := m.CheckTimeout(at(DefaultAttemptGap)); len(events) != 0 {
		t.Errorf("gap exactly at threshold should not time out, got %+v", events)
	}
	if events := m.CheckTimeout(at(DefaultAttemptGap + time.Millisecond)); len(events) != 1 {
		t.Errorf("expected timeout just past threshold, got %+v", events)
	}
}

func TestTimeoutIgnoredWhenIdle(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(80, at(0))
	if events := m.CheckTimeout(at(10 * time.Second)); len(events) != 0 {
		t.Errorf("idle machine should not time out, got %+v", events)
	}
}

func TestSamplesKeepAttemptAlive(t *testing.T) {
	m := newTestMachine()
	for i := 0; i < 20; i++ {
		now := at(time.Duration(i) * 500 * time.Millisecond)
		m.OnDistance(20, now)
		if events := m.CheckTimeout(now.Add(400 * time.Millisecond)); len(events) != 0 {
			t.Fatalf("iteration %d: unexpected timeout %+v", i, events)
		}
	}
	if !m.State().Armed {
		t.Error("expected machine to stay armed")
	}
}

func TestDistanceAboveArmZoneNeverArms(t *testing.T) {
	m := newTestMachine()
	for i, cm := range []float64{28.01, 100, 45, 29, 1000} {
		m.OnDistance(cm, at(time.Duration(i)*50*time.Millisecond))
		if m.State().Armed {
			t.Fatalf("armed at %vcm", cm)
		}
	}
}

func TestArmZoneIsInclusive(t *testing.T) {
	m := newTestMachine()
	events := m.OnDistance(DefaultArmZoneCM, at(0))
	if len(events) != 1 || events[0].Type != EventArmed {
		t.Errorf("expected arm at exactly %vcm, got %+v", DefaultArmZoneCM, events)
	}
}

func TestArmedStaysArmed(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(10, at(0))

	for i, cm := range []float64{50, 200, 5, 80} {
		events := m.OnDistance(cm, at(time.Duration(i+1)*100*time.Millisecond))
		if len(events) != 0 {
			t.Errorf("sample %v: expected no further events, got %+v", cm, events)
		}
		if !m.State().Armed {
			t.Fatalf("disarmed by sample %v", cm)
		}
	}
	if got := m.State().MinDistanceCM; got != 5 {
		t.Errorf("expected min distance 5, got %v", got)
	}
}

func TestArmingDoesNotMoveSessionStart(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(20, at(5*time.Second))
	events := m.OnProximity(at(6 * time.Second))
	if len(events) != 1 || events[0].ElapsedMs != 6000 {
		t.Errorf("expected elapsed 6000ms from session start, got %+v", events)
	}
}

func TestProximityDebounce(t *testing.T) {
	m := newTestMachine()

	if events := m.OnProximity(at(0)); len(events) != 1 || events[0].Type != EventMissed {
		t.Fatalf("first pulse should be accepted, got %+v", events)
	}

	// Arm, then pulse inside the cooldown window: ignored.
	m.OnDistance(20, at(100*time.Millisecond))
	if events := m.OnProximity(at(599 * time.Millisecond)); len(events) != 0 {
		t.Fatalf("pulse inside cooldown should be ignored, got %+v", events)
	}
	if m.IsCompleted() {
		t.Fatal("debounced pulse must not complete the session")
	}

	events := m.OnProximity(at(600 * time.Millisecond))
	if len(events) != 1 || events[0].Type != EventCompleted {
		t.Fatalf("pulse after cooldown should complete, got %+v", events)
	}
}

func TestProximityBurstOnlyFirstProcessed(t *testing.T) {
	m := newTestMachine()
	processed := 0
	for i := 0; i < 10; i++ {
		processed += len(m.OnProximity(at(time.Duration(i) * 50 * time.Millisecond)))
	}
	if processed != 1 {
		t.Errorf("expected exactly 1 processed pulse in burst, got %d", processed)
	}
}

func TestDebouncedPulseDoesNotRestartCooldown(t *testing.T) {
	m := newTestMachine()
	m.OnProximity(at(0))
	m.OnProximity(at(500 * time.Millisecond)) // ignored
	if events := m.OnProximity(at(650 * time.Millisecond)); len(events) != 1 {
		t.Errorf("cooldown should run from the last accepted pulse, got %+v", events)
	}
}

func TestCompletionIsSticky(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(20, at(100*time.Millisecond))
	m.OnProximity(at(900 * time.Millisecond))
	before := m.State()

	// Replayed and new input after completion changes nothing.
	replay := []func() []Event{
		func() []Event { return m.OnDistance(5, at(2*time.Second)) },
		func() []Event { return m.OnProximity(at(3 * time.Second)) },
		func() []Event { return m.OnDistance(20, at(4*time.Second)) },
		func() []Event { return m.OnProximity(at(5 * time.Second)) },
		func() []Event { return m.CheckTimeout(at(10 * time.Second)) },
		func() []Event { return m.ForceReset(at(11 * time.Second)) },
	}
	for i, fn := range replay {
		if events := fn(); len(events) != 0 {
			t.Errorf("replay %d: expected no events after completion, got %+v", i, events)
		}
	}

	after := m.State()
	if after != before {
		t.Errorf("state changed after completion:\nbefore %+v\nafter  %+v", before, after)
	}
	if best, _ := m.Best(); best != 900 {
		t.Errorf("only the first completion counts, got best %d", best)
	}
}

func TestForceResetIgnoredAfterCompletion(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(25, at(100*time.Millisecond))
	m.OnProximity(at(1200 * time.Millisecond))
	before := m.State()

	if events := m.ForceReset(at(2 * time.Second)); events != nil {
		t.Fatalf("expected no events after completion, got %+v", events)
	}
	if s := m.State(); s != before {
		t.Errorf("state changed:\nbefore %+v\nafter  %+v", before, s)
	}
	if !before.Completed || before.BestTimeMs != 1200 {
		t.Errorf("completion and best must survive reset, got %+v", before)
	}
	if got := m.EventCountsSnapshot(); got.Reset != 0 || got.Completed != 1 {
		t.Errorf("counts: got %+v", got)
	}
}

func TestForceResetBeforeCompletion(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(20, at(0))
	m.ForceReset(at(100 * time.Millisecond))

	if m.State().Armed {
		t.Fatal("expected disarmed after reset")
	}
	// Rearm and finish: the clock still runs from session start.
	m.OnDistance(15, at(300*time.Millisecond))
	events := m.OnProximity(at(1500 * time.Millisecond))
	if len(events) != 1 || events[0].ElapsedMs != 1500 {
		t.Errorf("expected finish at 1500ms, got %+v", events)
	}
}

func TestElapsedRounding(t *testing.T) {
	m := newTestMachine()
	m.OnDistance(20, at(0))
	events := m.OnProximity(at(1234*time.Millisecond + 600*time.Microsecond))
	if len(events) != 1 || events[0].ElapsedMs != 1235 {
		t.Errorf("expected 1235ms after rounding, got %+v", events)
	}
}

func TestProcessDispatch(t *testing.T) {
	m := newTestMachine()
	for _, ev := range ParseLine(`{"distance": 12.5, "near": true}`) {
		m.Process(ev, at(700*time.Millisecond))
	}
	if !m.IsCompleted() {
		t.Fatal("distance then near on one line should arm and complete")
	}
	if best, _ := m.Best(); best != 700 {
		t.Errorf("expected best 700, got %d", best)
	}

	m2 := newTestMachine()
	if events := m2.Process(SensorEvent{Kind: KindUnrecognized, Raw: "x"}, at(0)); events != nil {
		t.Errorf("unrecognized should be ignored, got %+v", events)
	}
}

func TestEventCounts(t *testing.T) {
	m := newTestMachine()
	m.OnProximity(at(0))
	m.OnDistance(20, at(100*time.Millisecond))
	m.CheckTimeout(at(time.Second))
	m.OnDistance(20, at(1100*time.Millisecond))
	m.ForceReset(at(1200 * time.Millisecond))
	m.OnDistance(20, at(1300*time.Millisecond))
	m.OnProximity(at(1400 * time.Millisecond))

	want := EventCounts{Armed: 3, Completed: 1, Missed: 1, TimedOut: 1, Reset: 1}
	if got := m.EventCountsSnapshot(); got != want {
		t.Errorf("counts: got %+v, want %+v", got, want)
	}
}

func TestInAttemptImpliesArmed(t *testing.T) {
	m := newTestMachine()
	steps := []func(){
		func() { m.OnDistance(50, at(0)) },
		func() { m.OnDistance(20, at(100*time.Millisecond)) },
		func() { m.CheckTimeout(at(time.Second)) },
		func() { m.OnProximity(at(1100 * time.Millisecond)) },
		func() { m.OnDistance(10, at(1200*time.Millisecond)) },
		func() { m.ForceReset(at(1300 * time.Millisecond)) },
		func() { m.OnDistance(10, at(1400*time.Millisecond)) },
		func() { m.OnProximity(at(2 * time.Second)) },
	}
	for i, step := range steps {
		step()
		if s := m.State(); s.InAttempt && !s.Armed {
			t.Fatalf("step %d: in attempt without being armed: %+v", i, s)
		}
	}
}
