package leaderboard

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Session is the current player, written when a game starts.
type Session struct {
	PlayerName string  `json:"player_name"`
	TS         float64 `json:"ts"` // unix seconds
}

// SaveSession writes the current player to path.
func SaveSession(path, name string, now time.Time) error {
	data, err := json.MarshalIndent(Session{
		PlayerName: name,
		TS:         float64(now.UnixNano()) / float64(time.Second),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// LoadSession reads the last saved player.
func LoadSession(path string) (Session, error) {
	var s Session
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}
