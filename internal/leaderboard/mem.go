package leaderboard

import "sync"

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu      sync.Mutex
	records []Record

	// LoadError, if set, will be returned by Load.
	LoadError error

	// UpsertError, if set, will be returned by Upsert.
	UpsertError error

	// Upserts counts successful Upsert calls.
	Upserts int
}

// NewMemStore creates a store holding a copy of records.
func NewMemStore(records ...Record) *MemStore {
	return &MemStore{records: append([]Record(nil), records...)}
}

// Load implements Store.
func (m *MemStore) Load() ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	return append([]Record(nil), m.records...), nil
}

// Upsert implements Store.
func (m *MemStore) Upsert(name string, fastMs *int64, closeCM *float64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertError != nil {
		return Record{}, m.UpsertError
	}
	records, rec, err := upsert(m.records, name, fastMs, closeCM)
	if err != nil {
		return Record{}, err
	}
	m.records = records
	m.Upserts++
	return rec, nil
}

// Delete implements Store.
func (m *MemStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	records, err := remove(m.records, name)
	if err != nil {
		return err
	}
	m.records = records
	return nil
}

// Reset implements Store.
func (m *MemStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}
