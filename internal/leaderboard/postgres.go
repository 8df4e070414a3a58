package leaderboard

import (
	"database/sql"
	"embed"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps the leaderboard in a PostgreSQL table. The merge
// rules run inside the upsert statement so concurrent writers agree.
type PostgresStore struct {
	conn *sql.DB
}

// Connect opens and pings the database.
func Connect(dsn string) (*PostgresStore, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log.Printf("leaderboard: connected to PostgreSQL")
	return &PostgresStore{conn: conn}, nil
}

// Close closes the database.
func (s *PostgresStore) Close() error {
	return s.conn.Close()
}

// Migrate applies the embedded migrations in name order.
func (s *PostgresStore) Migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		log.Printf("leaderboard: applied migration %s", entry.Name())
	}
	return nil
}

// Load implements Store.
func (s *PostgresStore) Load() ([]Record, error) {
	rows, err := s.conn.Query(`
		SELECT name, best_fast_ms, best_close_cm, best_score
		FROM leaderboard
		ORDER BY created_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}
	return records, nil
}

// Upsert implements Store. LEAST ignores NULLs, so a missing value never
// replaces a stored best.
func (s *PostgresStore) Upsert(name string, fastMs *int64, closeCM *float64) (Record, error) {
	_, rec, err := upsert(nil, name, fastMs, closeCM)
	if err != nil {
		return Record{}, err
	}

	row := s.conn.QueryRow(`
		INSERT INTO leaderboard (name, best_fast_ms, best_close_cm, best_score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			best_fast_ms  = LEAST(leaderboard.best_fast_ms, EXCLUDED.best_fast_ms),
			best_close_cm = LEAST(leaderboard.best_close_cm, EXCLUDED.best_close_cm),
			best_score    = CASE
				WHEN LEAST(leaderboard.best_fast_ms, EXCLUDED.best_fast_ms) IS NULL THEN leaderboard.best_score
				ELSE GREATEST(0, $5 - LEAST(leaderboard.best_fast_ms, EXCLUDED.best_fast_ms))
			END,
			updated_at    = now()
		RETURNING name, best_fast_ms, best_close_cm, best_score
	`, rec.Name, rec.BestFastMs, rec.BestCloseCM, rec.BestScore, BaseScoreMs)

	out, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("upserting %s: %w", rec.Name, err)
	}
	return out, nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(name string) error {
	res, err := s.conn.Exec(`DELETE FROM leaderboard WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Reset implements Store.
func (s *PostgresStore) Reset() error {
	if _, err := s.conn.Exec(`DELETE FROM leaderboard`); err != nil {
		return fmt.Errorf("resetting leaderboard: %w", err)
	}
	log.Printf("leaderboard: reset database table")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec  Record
		fast sql.NullInt64
		near sql.NullFloat64
	)
	if err := sc.Scan(&rec.Name, &fast, &near, &rec.BestScore); err != nil {
		return Record{}, fmt.Errorf("scanning leaderboard row: %w", err)
	}
	if fast.Valid {
		rec.BestFastMs = Int64(fast.Int64)
	}
	if near.Valid {
		rec.BestCloseCM = Float64(near.Float64)
	}
	return rec, nil
}
