package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record resolved by the user directory. The hashed
// PIN is write-only data: it is never logged, serialized, or returned in any
// response.
type User struct {
	ID            uuid.UUID
	Name          string
	PinIdentifier string
	HashedPin     string
	SchoolSlug    string
	SectorKey     string
	RoleKey       string
}

// LoginRequest is the credential presented by the caller. When PinIdentifier
// is empty the PIN itself scopes the lookup, matching the original single-field
// login form.
type LoginRequest struct {
	PinIdentifier string `json:"pin_identifier" validate:"omitempty,max=72"`
	Pin           string `json:"pin" validate:"required,min=4,max=72"`
}

// LoginResult carries the issued token plus the minimal non-sensitive identity
// info the caller needs for navigation. Never the hash, the PIN, or the key.
type LoginResult struct {
	Token      string
	SchoolSlug string
	Name       string
	ExpiresIn  time.Duration
}
