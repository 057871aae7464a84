package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pinauth/internal/auth/models"
)

// PostgresStore resolves credential records from PostgreSQL. The query joins
// the reference tables so a single lookup yields the full identity claims, the
// way the original directory did.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed directory.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const findByPinIdentifierQuery = `
SELECT u.id, u.name, u.pin_identifier, u.hashed_pin, o.slug, s.key, r.key
FROM users u
JOIN organizations o ON o.id = u.organization_id
JOIN sectors s ON s.id = u.sector_id
JOIN roles r ON r.id = u.role_id
WHERE u.pin_identifier = $1`

// FindByPinIdentifier resolves a pin identifier to its credential record.
func (s *PostgresStore) FindByPinIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, findByPinIdentifierQuery, identifier).Scan(
		&u.ID, &u.Name, &u.PinIdentifier, &u.HashedPin, &u.SchoolSlug, &u.SectorKey, &u.RoleKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pin identifier lookup: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("find user by pin identifier: %w", err)
	}
	return &u, nil
}
