package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps the trail in memory for small deployments and
// tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

// NewInMemoryStore constructs an empty audit store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.StationID] = append(s.events[event.StationID], event)
	return nil
}

func (s *InMemoryStore) ListByStation(_ context.Context, stationID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[stationID]...), nil
}
