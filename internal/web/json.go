package web

import (
	"encoding/json"

	"github.com/sweeney/reaction-arcade/internal/leaderboard"
)

// LeaderboardJSON is the JSON representation of the boards.
type LeaderboardJSON struct {
	Fastest []RowJSON `json:"fastest"`
	Closest []RowJSON `json:"closest"`
	Players int       `json:"players"`
}

// RowJSON is one ranked leaderboard row.
type RowJSON struct {
	Rank        int      `json:"rank"`
	Name        string   `json:"name"`
	BestFastMs  *int64   `json:"best_fast_ms"`
	BestCloseCM *float64 `json:"best_close_cm"`
	BestScore   int64    `json:"best_score"`
}

func rows(records []leaderboard.Record) []RowJSON {
	out := make([]RowJSON, len(records))
	for i, r := range records {
		out[i] = RowJSON{
			Rank:        i + 1,
			Name:        r.Name,
			BestFastMs:  r.BestFastMs,
			BestCloseCM: r.BestCloseCM,
			BestScore:   r.BestScore,
		}
	}
	return out
}

func formatLeaderboard(records []leaderboard.Record, k int) []byte {
	lj := LeaderboardJSON{
		Fastest: rows(leaderboard.FastBoard(records, k)),
		Closest: rows(leaderboard.CloseBoard(records, k)),
		Players: len(records),
	}
	data, _ := json.MarshalIndent(lj, "", "  ")
	return data
}
