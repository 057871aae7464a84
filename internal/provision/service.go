// Package provision orchestrates user creation: validate the input, resolve
// tenant references, hash the PIN, and delegate storage.
package provision

import (
	"context"
	"errors"
	"log/slog"

	"pinauth/internal/platform/metrics"
	"pinauth/internal/platform/middleware"
	"pinauth/internal/provision/models"
	"pinauth/internal/provision/store"
	dErrors "pinauth/pkg/domain-errors"
	"pinauth/pkg/validation"
)

// PinHasher hashes plain PINs on the shared bounded pool.
type PinHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
}

// Service implements the provisioning flow.
type Service struct {
	store   store.Store
	hasher  PinHasher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables Prometheus counters on the provisioning path.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs the provisioning service.
func New(st store.Store, hasher PinHasher, opts ...Option) *Service {
	svc := &Service{store: st, hasher: hasher}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Provision creates a new user credential. The PIN is hashed before any
// persistence call and is never logged.
func (s *Service) Provision(ctx context.Context, req *models.CreateUserRequest) (*models.CreateUserResult, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	identifier := req.PinIdentifier
	if identifier == "" {
		identifier = req.Pin
	}

	org, err := s.store.FindOrganizationBySlug(ctx, req.SchoolSlug)
	if err != nil {
		return nil, s.referenceError(err, "unknown school slug")
	}
	sector, err := s.store.FindSectorByKey(ctx, org.ID, req.SectorKey)
	if err != nil {
		return nil, s.referenceError(err, "unknown sector key")
	}
	role, err := s.store.FindRoleByKey(ctx, req.RoleKey)
	if err != nil {
		return nil, s.referenceError(err, "unknown role key")
	}

	hashedPin, err := s.hasher.Hash(ctx, req.Pin)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash pin")
	}

	id, err := s.store.CreateUser(ctx, store.NewUser{
		Name:           req.Name,
		PinIdentifier:  identifier,
		HashedPin:      hashedPin,
		OrganizationID: org.ID,
		SectorID:       sector.ID,
		RoleID:         role.ID,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "pin identifier already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user provisioned",
		"user_id", id.String(),
		"school", org.Slug,
		"sector", sector.Key,
		"role", role.Key,
		"request_id", middleware.GetRequestID(ctx),
		"event", "user_provisioned",
		"log_type", "audit",
	)
	if s.metrics != nil {
		s.metrics.UsersProvisioned.Inc()
	}

	return &models.CreateUserResult{ID: id, Name: req.Name}, nil
}

// referenceError maps a store miss to unknown_reference; anything else is an
// infrastructure failure.
func (s *Service) referenceError(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return dErrors.New(dErrors.CodeUnknownReference, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "reference lookup failed")
}
