// Package store implements the persistence store consumed by the provisioning
// flow: durable storage for hashed credentials plus the tenant reference data
// (organizations, sectors, roles) they point at.
//
// Error Contract:
// - Find methods return ErrNotFound (wrapped) when the entity does not exist
// - CreateUser returns ErrConflict (wrapped) on a duplicate pin identifier
// - Infrastructure failures are returned wrapped with context
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	authmodels "pinauth/internal/auth/models"
	"pinauth/internal/provision/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a pin identifier already exists within the tenant.
var ErrConflict = errors.New("pin identifier already exists")

// NewUser is the record handed to CreateUser. The secret arrives hashed; the
// store never sees a plain PIN.
type NewUser struct {
	Name           string
	PinIdentifier  string
	HashedPin      string
	OrganizationID uuid.UUID
	SectorID       uuid.UUID
	RoleID         uuid.UUID
}

// Store is the capability set the provisioning flow depends on.
type Store interface {
	FindOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error)
	FindSectorByKey(ctx context.Context, orgID uuid.UUID, key string) (*models.Sector, error)
	FindRoleByKey(ctx context.Context, key string) (*models.Role, error)
	CreateUser(ctx context.Context, user NewUser) (uuid.UUID, error)
}

// Directory is the lookup capability the memory store also provides, so a
// single backend can serve both the authentication and provisioning flows.
type Directory interface {
	FindByPinIdentifier(ctx context.Context, identifier string) (*authmodels.User, error)
}
