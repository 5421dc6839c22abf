package entry

import (
	"context"
	"fmt"
	"sync"

	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
	"voteauth/pkg/platform/sentinel"
)

// InMemoryStore holds both reference tables in process memory. It is
// the deployment default for small elections and the test double
// everywhere else.
type InMemoryStore struct {
	mu          sync.RWMutex
	departments map[string]id.KindCode
	overrides   map[id.StudentID]id.KindCode
}

// NewInMemory constructs a store seeded with the given tables.
func NewInMemory(departments []models.DepartmentEntry, overrides []models.OverrideEntry) *InMemoryStore {
	s := &InMemoryStore{
		departments: make(map[string]id.KindCode, len(departments)),
		overrides:   make(map[id.StudentID]id.KindCode, len(overrides)),
	}
	for _, e := range departments {
		s.departments[e.DepartmentCode] = e.Kind
	}
	for _, e := range overrides {
		s.overrides[e.StudentID] = e.Kind
	}
	return s
}

func (s *InMemoryStore) KindByDepartment(_ context.Context, departmentCode string) (id.KindCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if kind, ok := s.departments[departmentCode]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("department %s: %w", departmentCode, sentinel.ErrNotFound)
}

func (s *InMemoryStore) KindByStudent(_ context.Context, studentID id.StudentID) (id.KindCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if kind, ok := s.overrides[studentID]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("override %s: %w", studentID, sentinel.ErrNotFound)
}
