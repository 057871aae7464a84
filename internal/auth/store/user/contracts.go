// Package user implements the user directory consumed by the authentication
// flow.
//
// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound (possibly wrapped) when the requested entity does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
package user

import "errors"

// ErrNotFound is returned when no credential record matches the lookup.
var ErrNotFound = errors.New("user not found")
