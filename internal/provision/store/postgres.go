package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"pinauth/internal/provision/models"
)

// PostgresStore persists credentials and reference data in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed persistence store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name FROM organizations WHERE slug = $1`, slug,
	).Scan(&org.ID, &org.Slug, &org.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("find organization by slug: %w", err)
	}
	return &org, nil
}

func (s *PostgresStore) FindSectorByKey(ctx context.Context, orgID uuid.UUID, key string) (*models.Sector, error) {
	var sector models.Sector
	err := s.db.QueryRowContext(ctx,
		`SELECT id, organization_id, key FROM sectors WHERE organization_id = $1 AND key = $2`, orgID, key,
	).Scan(&sector.ID, &sector.OrganizationID, &sector.Key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sector %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("find sector by key: %w", err)
	}
	return &sector, nil
}

func (s *PostgresStore) FindRoleByKey(ctx context.Context, key string) (*models.Role, error) {
	var role models.Role
	err := s.db.QueryRowContext(ctx,
		`SELECT id, key FROM roles WHERE key = $1`, key,
	).Scan(&role.ID, &role.Key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("find role by key: %w", err)
	}
	return &role, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user NewUser) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, pin_identifier, hashed_pin, organization_id, sector_id, role_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, user.Name, user.PinIdentifier, user.HashedPin,
		user.OrganizationID, user.SectorID, user.RoleID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("create user: %w", ErrConflict)
		}
		return uuid.Nil, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// isUniqueViolation reports whether err is a postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
