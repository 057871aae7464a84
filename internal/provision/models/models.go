package models

import "github.com/google/uuid"

// Organization is a tenant: a school partitioning users, sectors, and roles.
type Organization struct {
	ID   uuid.UUID
	Slug string
	Name string
}

// Sector is a department within an organization.
type Sector struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Key            string
}

// Role is a global role definition (e.g. "diretor", "lider", "sr", "jr").
type Role struct {
	ID  uuid.UUID
	Key string
}

// AdminRoleKey is the role allowed to provision users.
const AdminRoleKey = "diretor"

// CreateUserRequest is the provisioning input. The plain PIN is hashed before
// any persistence call and never logged at any verbosity level.
type CreateUserRequest struct {
	Name          string `json:"name" validate:"required,notblank,max=120"`
	Pin           string `json:"pin" validate:"required,min=4,max=72"`
	PinIdentifier string `json:"pin_identifier" validate:"omitempty,max=72"`
	SchoolSlug    string `json:"school_slug" validate:"required,notblank,max=100"`
	SectorKey     string `json:"sector_key" validate:"required,notblank,max=100"`
	RoleKey       string `json:"role_key" validate:"required,notblank,max=100"`
}

// CreateUserResult is returned to the caller. It never contains the PIN or
// its hash.
type CreateUserResult struct {
	ID   uuid.UUID
	Name string
}
