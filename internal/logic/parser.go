package logic

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Plain-text prefixes accepted when a line is not a JSON object.
const (
	prefixCM       = "cm="
	prefixDistance = "Distance:"
)

// ParseLine decodes one sensor line into typed events.
//
// JSON objects are tried first: a numeric "distance" key, else a numeric "cm"
// key, produce a distance sample; "near": true produces a proximity pulse.
// Both may come from the same line, distance first. Otherwise the plain-text
// forms "cm=<float>" and "Distance: <float> <unit>" are accepted.
// Anything else yields a single KindUnrecognized event.
func ParseLine(line string) []SensorEvent {
	line = strings.TrimSpace(line)
	if line == "" {
		return []SensorEvent{unrecognized(line)}
	}

	if events, ok := parseStructured(line); ok {
		if len(events) == 0 {
			return []SensorEvent{unrecognized(line)}
		}
		return events
	}

	if cm, ok := parsePlain(line); ok {
		return []SensorEvent{Distance(cm)}
	}
	return []SensorEvent{unrecognized(line)}
}

// parseStructured returns ok=false when the line is not a JSON object.
func parseStructured(line string) ([]SensorEvent, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(line)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	if dec.More() {
		// Trailing garbage after the object.
		return nil, false
	}

	var events []SensorEvent

	// A present "distance" key wins over "cm" even when it is unusable.
	if v, present := obj["distance"]; present {
		if cm, ok := number(v); ok {
			events = append(events, Distance(cm))
		}
	} else if v, present := obj["cm"]; present {
		if cm, ok := number(v); ok {
			events = append(events, Distance(cm))
		}
	}

	if near, ok := obj["near"].(bool); ok && near {
		events = append(events, Proximity())
	}
	return events, true
}

func parsePlain(line string) (float64, bool) {
	switch {
	case strings.HasPrefix(line, prefixCM):
		return parseFloat(strings.TrimPrefix(line, prefixCM))
	case strings.HasPrefix(line, prefixDistance):
		// "Distance: 25 cm" -> first field after the label.
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		return parseFloat(fields[1])
	}
	return 0, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		return parseFloat(n.String())
	case string:
		return parseFloat(n)
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func unrecognized(line string) SensorEvent {
	return SensorEvent{Kind: KindUnrecognized, Raw: line}
}
