package repository

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore returns a process-local Store. Nothing survives a restart.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record)}
}

var _ Store = (*memoryStore)(nil)

func (s *memoryStore) Load(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	data := make([]byte, len(rec.Data))
	copy(data, rec.Data)
	return &Record{Key: key, Data: data, Version: rec.Version}, nil
}

func (s *memoryStore) Save(_ context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.records[key].Version
	if current != expectedVersion {
		return 0, ErrVersionConflict
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.records[key] = Record{Key: key, Data: buf, Version: current + 1}
	return current + 1, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}
