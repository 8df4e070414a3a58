package logic

import "testing"

func TestParseLineStructuredDistanceAndNear(t *testing.T) {
	events := ParseLine(`{"distance": 12.5, "near": true}`)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != KindDistance || events[0].DistanceCM != 12.5 {
		t.Errorf("event 0: expected DISTANCE 12.5, got %+v", events[0])
	}
	if events[1].Kind != KindProximity {
		t.Errorf("event 1: expected PROXIMITY, got %+v", events[1])
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []SensorEvent
	}{
		{"distance key", `{"distance": 25, "timestamp": 12345, "unit": "cm"}`, []SensorEvent{Distance(25)}},
		{"cm key", `{"cm": 17}`, []SensorEvent{Distance(17)}},
		{"distance wins over cm", `{"distance": 10, "cm": 99}`, []SensorEvent{Distance(10)}},
		{"non-numeric distance suppresses cm", `{"distance": "far", "cm": 99}`, []SensorEvent{{Kind: KindUnrecognized, Raw: `{"distance": "far", "cm": 99}`}}},
		{"numeric string", `{"distance": "31.5"}`, []SensorEvent{Distance(31.5)}},
		{"near only", `{"near": true}`, []SensorEvent{Proximity()}},
		{"near false", `{"near": false}`, []SensorEvent{{Kind: KindUnrecognized, Raw: `{"near": false}`}}},
		{"near not bool", `{"near": 1}`, []SensorEvent{{Kind: KindUnrecognized, Raw: `{"near": 1}`}}},
		{"cm and near", `{"cm": 3, "near": true}`, []SensorEvent{Distance(3), Proximity()}},
		{"empty object", `{}`, []SensorEvent{{Kind: KindUnrecognized, Raw: `{}`}}},
		{"plain cm", "cm=17.25", []SensorEvent{Distance(17.25)}},
		{"plain cm spaced", "cm= 8 ", []SensorEvent{Distance(8)}},
		{"plain cm bad", "cm=abc", []SensorEvent{{Kind: KindUnrecognized, Raw: "cm=abc"}}},
		{"distance label", "Distance: 25 cm", []SensorEvent{Distance(25)}},
		{"distance label float", "Distance: 4.75 cm", []SensorEvent{Distance(4.75)}},
		{"distance label glued", "Distance:25 cm", []SensorEvent{{Kind: KindUnrecognized, Raw: "Distance:25 cm"}}},
		{"distance label missing value", "Distance:", []SensorEvent{{Kind: KindUnrecognized, Raw: "Distance:"}}},
		{"bare number", "25", []SensorEvent{{Kind: KindUnrecognized, Raw: "25"}}},
		{"json array", "[1,2]", []SensorEvent{{Kind: KindUnrecognized, Raw: "[1,2]"}}},
		{"garbage", "hello sensor", []SensorEvent{{Kind: KindUnrecognized, Raw: "hello sensor"}}},
		{"nan rejected", "cm=NaN", []SensorEvent{{Kind: KindUnrecognized, Raw: "cm=NaN"}}},
		{"surrounding whitespace", "  cm=5\r", []SensorEvent{Distance(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseLine(%q): expected %d events, got %d: %+v", tt.line, len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseLine(%q)[%d]: got %+v, want %+v", tt.line, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseLineEmpty(t *testing.T) {
	got := ParseLine("   ")
	if len(got) != 1 || got[0].Kind != KindUnrecognized {
		t.Errorf("expected single UNRECOGNIZED, got %+v", got)
	}
}

func TestParseLineTrailingGarbageFallsBack(t *testing.T) {
	got := ParseLine(`{"cm": 5} trailing`)
	if len(got) != 1 || got[0].Kind != KindUnrecognized {
		t.Errorf("expected UNRECOGNIZED for trailing garbage, got %+v", got)
	}
}
