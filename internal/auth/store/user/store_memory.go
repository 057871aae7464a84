package user

import (
	"context"
	"fmt"
	"sync"

	"pinauth/internal/auth/models"
)

// InMemoryStore keeps credential records in memory for tests and dev runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by pin identifier
}

// NewInMemory constructs an empty in-memory directory.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]*models.User)}
}

// Save stores a credential record keyed by its pin identifier.
func (s *InMemoryStore) Save(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.PinIdentifier] = u
	return nil
}

// FindByPinIdentifier resolves a pin identifier to its credential record.
func (s *InMemoryStore) FindByPinIdentifier(_ context.Context, identifier string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[identifier]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("pin identifier lookup: %w", ErrNotFound)
}
