package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the leaderboard as a JSON array in a single file.
// Writes replace the file atomically. A corrupt file is treated as empty
// and preserved as <path>.corrupt before it is first overwritten. A file
// that cannot be read loads as empty but is never overwritten by Upsert or
// Delete.
type FileStore struct {
	path string

	mu      sync.Mutex
	corrupt bool
}

// NewFileStore creates a store backed by path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		log.Printf("leaderboard: %v", err)
		return nil, nil
	}
	return records, nil
}

// Upsert implements Store.
func (s *FileStore) Upsert(name string, fastMs *int64, closeCM *float64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return Record{}, err
	}
	records, rec, err := upsert(current, name, fastMs, closeCM)
	if err != nil {
		return Record{}, err
	}
	if err := s.write(records); err != nil {
		return Record{}, err
	}
	log.Printf("leaderboard: saved %s (fast=%s close=%s score=%d)", rec.Name, fmtInt(rec.BestFastMs), fmtFloat(rec.BestCloseCM), rec.BestScore)
	return rec, nil
}

// Delete implements Store.
func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	records, err := remove(current, name)
	if err != nil {
		return err
	}
	return s.write(records)
}

// Reset implements Store.
func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write([]Record{}); err != nil {
		return err
	}
	log.Printf("leaderboard: reset %s", s.path)
	return nil
}

// read returns the stored records. A missing or corrupt file is empty; any
// other failure is returned so callers do not write over data they could
// not see.
func (s *FileStore) read() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("leaderboard: %s is corrupt, treating as empty: %v", s.path, err)
		s.corrupt = true
		return nil, nil
	}
	return dedupe(records), nil
}

// dedupe keeps the first record per name, merging later duplicates into it.
func dedupe(records []Record) []Record {
	out := records[:0]
	index := make(map[string]int, len(records))
	for _, r := range records {
		if i, ok := index[r.Name]; ok {
			Merge(&out[i], r.BestFastMs, r.BestCloseCM)
			continue
		}
		index[r.Name] = len(out)
		out = append(out, r)
	}
	return out
}

func (s *FileStore) write(records []Record) error {
	if s.corrupt {
		backup := s.path + ".corrupt"
		if err := os.Rename(s.path, backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("leaderboard: preserve corrupt file: %v", err)
		} else {
			log.Printf("leaderboard: corrupt file preserved as %s", backup)
		}
		s.corrupt = false
	}

	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create leaderboard dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write leaderboard: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close leaderboard: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace leaderboard: %w", err)
	}
	return nil
}

func fmtInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%dms", *v)
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fcm", *v)
}
