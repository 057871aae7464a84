package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pinauth/internal/auth/device"
	"pinauth/internal/auth/models"
	userStore "pinauth/internal/auth/store/user"
	"pinauth/internal/platform/metrics"
	"pinauth/internal/platform/middleware"
	"pinauth/internal/token"
	dErrors "pinauth/pkg/domain-errors"
	"pinauth/pkg/validation"
)

// UserDirectory resolves a pin identifier to a credential record with its
// identity claims. Lookups return user.ErrNotFound (wrapped) on a miss.
type UserDirectory interface {
	FindByPinIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

// PinVerifier runs the slow hash comparison, bounded so concurrent logins
// cannot amplify latency without limit.
type PinVerifier interface {
	Verify(ctx context.Context, plain, hashed string) (bool, error)
}

// TokenIssuer builds the signed session credential for a resolved identity.
type TokenIssuer interface {
	Issue(ctx context.Context, identity token.Identity) (string, error)
	TTL() time.Duration
}

// Service orchestrates the authentication flow: directory lookup, hash
// verification, token issuance. It holds no mutable state of its own.
type Service struct {
	directory UserDirectory
	verifier  PinVerifier
	issuer    TokenIssuer
	logger    *slog.Logger
	metrics   *metrics.Metrics
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

// WithMetrics enables Prometheus counters on the auth path.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs the authentication service.
func New(directory UserDirectory, verifier PinVerifier, issuer TokenIssuer, opts ...Option) *Service {
	svc := &Service{
		directory: directory,
		verifier:  verifier,
		issuer:    issuer,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Authenticate verifies the presented PIN and issues a session token.
//
// A directory miss and a hash mismatch both produce the same generic
// unauthorized error. Callers must not be able to tell whether the identifier
// existed; the internal reason is logged only.
func (s *Service) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	identifier := req.PinIdentifier
	if identifier == "" {
		// Single-field login: the PIN scopes its own lookup.
		identifier = req.Pin
	}

	u, err := s.directory.FindByPinIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, userStore.ErrNotFound) {
			return nil, s.rejected(ctx, "identifier_not_found")
		}
		s.logger.ErrorContext(ctx, "directory lookup failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "directory lookup failed")
	}

	start := time.Now()
	ok, err := s.verifier.Verify(ctx, req.Pin, u.HashedPin)
	s.observePinVerify(time.Since(start))
	if err != nil {
		s.logger.ErrorContext(ctx, "pin verification failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "pin verification failed")
	}
	if !ok {
		return nil, s.rejected(ctx, "pin_mismatch")
	}

	sessionToken, err := s.issuer.Issue(ctx, token.Identity{
		UserID:     u.ID.String(),
		Name:       u.Name,
		RoleKey:    u.RoleKey,
		SchoolSlug: u.SchoolSlug,
		SectorKey:  u.SectorKey,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.logAudit(ctx, "user_authenticated",
		"user_id", u.ID.String(),
		"school", u.SchoolSlug,
		"role", u.RoleKey,
	)
	if s.metrics != nil {
		s.metrics.LoginsTotal.Inc()
		s.metrics.TokensIssued.Inc()
	}

	return &models.LoginResult{
		Token:      sessionToken,
		SchoolSlug: u.SchoolSlug,
		Name:       u.Name,
		ExpiresIn:  s.issuer.TTL(),
	}, nil
}

// rejected logs the internal failure reason and returns the generic error the
// caller sees for every credential failure.
func (s *Service) rejected(ctx context.Context, reason string) error {
	s.logger.WarnContext(ctx, "authentication failed",
		"reason", reason,
		"request_id", middleware.GetRequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.AuthFailures.Inc()
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if md := middleware.GetClientMetadata(ctx); md.UserAgent != "" {
		attributes = append(attributes, "device", device.ParseUserAgent(md.UserAgent), "ip", md.IP)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) observePinVerify(d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObservePinVerify(d)
	}
}
