package station

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"voteauth/pkg/platform/sentinel"
)

// InMemoryStore keeps stations in memory for small deployments and
// tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	stations map[uuid.UUID]*Station
	byName   map[string]uuid.UUID
}

// NewInMemoryStore constructs an empty station store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		stations: make(map[uuid.UUID]*Station),
		byName:   make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, st *Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[st.Name]; ok {
		return fmt.Errorf("station %s: %w", st.Name, sentinel.ErrConflict)
	}
	copied := *st
	s.stations[st.ID] = &copied
	s.byName[st.Name] = st.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.stations[id]; ok {
		copied := *st
		return &copied, nil
	}
	return nil, fmt.Errorf("station %s: %w", id, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByName(_ context.Context, name string) (*Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byName[name]; ok {
		copied := *s.stations[id]
		return &copied, nil
	}
	return nil, fmt.Errorf("station %s: %w", name, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Touch(_ context.Context, id uuid.UUID, seen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stations[id]
	if !ok {
		return fmt.Errorf("station %s: %w", id, sentinel.ErrNotFound)
	}
	st.LastSeen = seen
	return nil
}
