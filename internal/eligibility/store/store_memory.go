package store

import (
	"context"
	"sync"

	"saathi/internal/eligibility"
	"saathi/pkg/platform/sentinel"
)

// InMemoryVerdictStore keeps verdict records in process memory.
type InMemoryVerdictStore struct {
	mu      sync.RWMutex
	records map[string]eligibility.Record
}

func NewInMemory() *InMemoryVerdictStore {
	return &InMemoryVerdictStore{records: make(map[string]eligibility.Record)}
}

// Save stores a record. A session holds at most one verdict.
func (s *InMemoryVerdictStore) Save(_ context.Context, record eligibility.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.SessionID]; exists {
		return sentinel.ErrConflict
	}
	s.records[record.SessionID] = record
	return nil
}

func (s *InMemoryVerdictStore) FindBySession(_ context.Context, sessionID string) (*eligibility.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}
