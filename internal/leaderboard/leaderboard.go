// Package leaderboard persists per-player best results. Stores keep at most
// one Record per name and merge new results by keeping the minima.
package leaderboard

import (
	"errors"
	"sort"
	"strings"
)

// BaseScoreMs is the completion time that scores zero.
const BaseScoreMs = 2000

var (
	// ErrNotFound is returned by Delete for an unknown name.
	ErrNotFound = errors.New("leaderboard: no such player")
	// ErrEmptyName is returned by Upsert for a blank name.
	ErrEmptyName = errors.New("leaderboard: empty player name")
)

// Record is one player's best results.
type Record struct {
	Name        string   `json:"name"`
	BestFastMs  *int64   `json:"best_fast_ms"`
	BestCloseCM *float64 `json:"best_close_cm"`
	BestScore   int64    `json:"best_score"`
}

// Store is the leaderboard persistence contract.
type Store interface {
	// Load returns all records. A missing or unreadable store is empty.
	Load() ([]Record, error)
	// Upsert merges a result into the player's record and returns it.
	Upsert(name string, fastMs *int64, closeCM *float64) (Record, error)
	// Delete removes the player's record.
	Delete(name string) error
	// Reset removes every record.
	Reset() error
}

// Score returns max(0, BaseScoreMs - fastMs).
func Score(fastMs int64) int64 {
	return max(0, BaseScoreMs-fastMs)
}

// Merge applies a result to rec: each best keeps the smaller value and the
// score is recomputed from the best time. A record without a best time keeps
// its score.
func Merge(rec *Record, fastMs *int64, closeCM *float64) {
	if fastMs != nil && (rec.BestFastMs == nil || *fastMs < *rec.BestFastMs) {
		v := *fastMs
		rec.BestFastMs = &v
	}
	if closeCM != nil && (rec.BestCloseCM == nil || *closeCM < *rec.BestCloseCM) {
		v := *closeCM
		rec.BestCloseCM = &v
	}
	if rec.BestFastMs != nil {
		rec.BestScore = Score(*rec.BestFastMs)
	}
}

// upsert merges into records in place, appending a new record for an unknown
// name, and returns the updated slice and record.
func upsert(records []Record, name string, fastMs *int64, closeCM *float64) ([]Record, Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return records, Record{}, ErrEmptyName
	}
	for i := range records {
		if records[i].Name == name {
			Merge(&records[i], fastMs, closeCM)
			return records, records[i], nil
		}
	}
	rec := Record{Name: name}
	Merge(&rec, fastMs, closeCM)
	return append(records, rec), rec, nil
}

func remove(records []Record, name string) ([]Record, error) {
	for i := range records {
		if records[i].Name == name {
			return append(records[:i], records[i+1:]...), nil
		}
	}
	return records, ErrNotFound
}

// FastBoard returns up to k records with a best time, fastest first.
func FastBoard(records []Record, k int) []Record {
	var rows []Record
	for _, r := range records {
		if r.BestFastMs != nil {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return *rows[i].BestFastMs < *rows[j].BestFastMs
	})
	return top(rows, k)
}

// CloseBoard returns up to k records with a best distance, closest first.
func CloseBoard(records []Record, k int) []Record {
	var rows []Record
	for _, r := range records {
		if r.BestCloseCM != nil {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return *rows[i].BestCloseCM < *rows[j].BestCloseCM
	})
	return top(rows, k)
}

// Rank returns the 1-based position of name on the full fast board.
func Rank(records []Record, name string) (int, bool) {
	for i, r := range FastBoard(records, len(records)) {
		if r.Name == name {
			return i + 1, true
		}
	}
	return 0, false
}

func top(rows []Record, k int) []Record {
	if k >= 0 && len(rows) > k {
		return rows[:k]
	}
	return rows
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }
