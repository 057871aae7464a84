package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	authmodels "pinauth/internal/auth/models"
	userStore "pinauth/internal/auth/store/user"
	"pinauth/internal/provision/models"
)

// InMemoryStore backs dev runs and tests. It implements both the provisioning
// Store and the user directory lookup, so memory-mode deployments see the
// users they provision.
type InMemoryStore struct {
	mu    sync.RWMutex
	orgs  map[string]*models.Organization // keyed by slug
	roles map[string]*models.Role         // keyed by key
	// sectors keyed by org ID, then sector key
	sectors map[uuid.UUID]map[string]*models.Sector
	users   map[string]*authmodels.User // keyed by pin identifier
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		orgs:    make(map[string]*models.Organization),
		roles:   make(map[string]*models.Role),
		sectors: make(map[uuid.UUID]map[string]*models.Sector),
		users:   make(map[string]*authmodels.User),
	}
}

// AddOrganization registers a tenant with its sectors. Used by seeding and tests.
func (s *InMemoryStore) AddOrganization(org models.Organization, sectorKeys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	s.orgs[org.Slug] = &org
	bySector := make(map[string]*models.Sector, len(sectorKeys))
	for _, key := range sectorKeys {
		bySector[key] = &models.Sector{ID: uuid.New(), OrganizationID: org.ID, Key: key}
	}
	s.sectors[org.ID] = bySector
}

// AddRole registers a global role key. Used by seeding and tests.
func (s *InMemoryStore) AddRole(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[key] = &models.Role{ID: uuid.New(), Key: key}
}

func (s *InMemoryStore) FindOrganizationBySlug(_ context.Context, slug string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if org, ok := s.orgs[slug]; ok {
		return org, nil
	}
	return nil, fmt.Errorf("organization %q: %w", slug, ErrNotFound)
}

func (s *InMemoryStore) FindSectorByKey(_ context.Context, orgID uuid.UUID, key string) (*models.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sector, ok := s.sectors[orgID][key]; ok {
		return sector, nil
	}
	return nil, fmt.Errorf("sector %q: %w", key, ErrNotFound)
}

func (s *InMemoryStore) FindRoleByKey(_ context.Context, key string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if role, ok := s.roles[key]; ok {
		return role, nil
	}
	return nil, fmt.Errorf("role %q: %w", key, ErrNotFound)
}

func (s *InMemoryStore) CreateUser(_ context.Context, user NewUser) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.PinIdentifier]; exists {
		return uuid.Nil, fmt.Errorf("create user: %w", ErrConflict)
	}

	var orgSlug, sectorKey, roleKey string
	for _, org := range s.orgs {
		if org.ID == user.OrganizationID {
			orgSlug = org.Slug
		}
	}
	for _, sector := range s.sectors[user.OrganizationID] {
		if sector.ID == user.SectorID {
			sectorKey = sector.Key
		}
	}
	for _, role := range s.roles {
		if role.ID == user.RoleID {
			roleKey = role.Key
		}
	}

	id := uuid.New()
	s.users[user.PinIdentifier] = &authmodels.User{
		ID:            id,
		Name:          user.Name,
		PinIdentifier: user.PinIdentifier,
		HashedPin:     user.HashedPin,
		SchoolSlug:    orgSlug,
		SectorKey:     sectorKey,
		RoleKey:       roleKey,
	}
	return id, nil
}

// FindByPinIdentifier implements the user directory lookup over the same data.
func (s *InMemoryStore) FindByPinIdentifier(_ context.Context, identifier string) (*authmodels.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[identifier]; ok {
		return u, nil
	}
	// The directory contract has its own sentinel so the auth flow can treat a
	// miss as a credential failure, not an infrastructure one.
	return nil, fmt.Errorf("pin identifier lookup: %w", userStore.ErrNotFound)
}
