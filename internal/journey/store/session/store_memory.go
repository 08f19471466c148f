package session

import (
	"context"
	"sync"

	"saathi/internal/journey/models"
	"saathi/pkg/platform/sentinel"
	"saathi/pkg/requestcontext"
)

// InMemorySessionStore keeps journey sessions in process memory. Values are
// cloned on the way in and out so callers never share mutable state.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]*models.Session)}
}

// Create stores a fresh session, replacing any previous one under the same ID.
func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.Version = 1
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return session.Clone(), nil
}

// Save writes session if the stored version still equals session.Version,
// then bumps the version on both copies.
func (s *InMemorySessionStore) Save(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[session.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != session.Version {
		return sentinel.ErrConflict
	}
	session.Version++
	session.UpdatedAt = requestcontext.Now(ctx)
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
