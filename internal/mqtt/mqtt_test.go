package mqtt

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/reaction-arcade/internal/logic"
)

func TestFormatPayloadCompleted(t *testing.T) {
	event := GameEvent{
		Timestamp:  time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:       "COMPLETED",
		SessionID:  "2f1c",
		Player:     "ada",
		ElapsedMs:  1235,
		BestTimeMs: 1235,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"game":{"timestamp":"2026-02-02T22:18:12Z","event":"COMPLETED","session_id":"2f1c","player":"ada","elapsed_ms":1235,"best_time_ms":1235}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadOmitsInfiniteDistance(t *testing.T) {
	event := GameEvent{
		Timestamp:     time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:          "MISSED",
		SessionID:     "s",
		MinDistanceCM: math.Inf(1),
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(payload), "min_distance_cm") {
		t.Errorf("infinite distance should be omitted: %s", payload)
	}
}

func TestFromLogic(t *testing.T) {
	ts := time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)
	tests := []struct {
		in       logic.Event
		wantType string
		wantKey  string
	}{
		{logic.Event{Timestamp: ts, Type: logic.EventArmed, DistanceCM: 20}, "ARMED", `"distance_cm":20`},
		{logic.Event{Timestamp: ts, Type: logic.EventCompleted, ElapsedMs: 900, BestTimeMs: 800}, "COMPLETED", `"best_time_ms":800`},
		{logic.Event{Timestamp: ts, Type: logic.EventTimedOut, MinDistanceCM: 12.5}, "TIMED_OUT", `"min_distance_cm":12.5`},
	}

	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			ge := FromLogic("sess", "bob", tt.in)
			if ge.Type != tt.wantType || ge.SessionID != "sess" || ge.Player != "bob" {
				t.Errorf("unexpected event: %+v", ge)
			}

			payload, err := FormatPayload(ge)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(string(payload), tt.wantKey) {
				t.Errorf("payload %s missing %s", payload, tt.wantKey)
			}
		})
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.Publish(GameEvent{Type: "ARMED", SessionID: "s"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Publish(GameEvent{Type: "COMPLETED", SessionID: "s"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	types := f.EventTypes()
	if len(types) != 2 || types[0] != "ARMED" || types[1] != "COMPLETED" {
		t.Errorf("unexpected event types: %v", types)
	}
	if len(f.Payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")

	if err := f.Publish(GameEvent{Type: "ARMED"}); err == nil {
		t.Error("expected error")
	}
	if len(f.Events) != 0 {
		t.Errorf("expected no events recorded on error, got %d", len(f.Events))
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(GameEvent{Type: "ARMED"})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.PublishError = errors.New("error")

	f.Reset()

	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("events should be cleared")
	}
	if f.Closed {
		t.Error("closed should be reset")
	}
	if f.PublishError != nil {
		t.Error("error should be cleared")
	}
}

func TestTopics(t *testing.T) {
	if Topic != "arcade/reaction/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "arcade/reaction/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload should pass through, got %s", payload)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT"})

	var raw map[string]map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := raw["system"]["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(GameEvent{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if (NopPublisher{}).IsConnected() {
		t.Error("nop publisher is never connected")
	}
}
