// Package token issues and verifies the signed session credential.
//
// The token IS the session: no server-side session state is kept, so a token
// cannot be revoked before its expiry. That is a documented property of the
// design, not an oversight.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "pinauth/pkg/domain-errors"
)

// Identity carries the claims resolved by the user directory at login time.
// It is a fixed-shape record: the verifier never accepts open claim maps.
type Identity struct {
	UserID     string
	Name       string
	RoleKey    string
	SchoolSlug string
	SectorKey  string
}

// SessionClaims is the JWT claim set embedded in every session token.
type SessionClaims struct {
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
	School string `json:"school"`
	Sector string `json:"sector,omitempty"`
	jwt.RegisteredClaims
}

// Identity reconstructs the identity record from verified claims.
func (c *SessionClaims) Identity() Identity {
	return Identity{
		UserID:     c.Subject,
		Name:       c.Name,
		RoleKey:    c.Role,
		SchoolSlug: c.School,
		SectorKey:  c.Sector,
	}
}

// Service signs and verifies session tokens with a single symmetric key.
// Exactly one signing algorithm (HS256) is accepted on both paths.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
	now        func() time.Time
}

const defaultTokenTTL = 8 * time.Hour

// Option configures a Service.
type Option func(*Service)

// WithNow injects a clock for deterministic expiry tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a token Service. The signing key comes from process
// configuration; it must never be defaulted in source.
func New(signingKey string, issuer string, tokenTTL time.Duration, opts ...Option) *Service {
	svc := &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
	if svc.tokenTTL <= 0 {
		svc.tokenTTL = defaultTokenTTL
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// TTL reports the configured token lifetime, used by the transport layer to
// match cookie Max-Age to token expiry.
func (s *Service) TTL() time.Duration {
	return s.tokenTTL
}

// Issue builds and signs a session token for the given identity.
// Pure computation: nothing is persisted.
func (s *Service) Issue(_ context.Context, identity Identity) (string, error) {
	if identity.UserID == "" || identity.RoleKey == "" || identity.SchoolSlug == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity missing required claims")
	}

	now := s.now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Name:   identity.Name,
		Role:   identity.RoleKey,
		School: identity.SchoolSlug,
		Sector: identity.SectorKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signedToken, nil
}

// Verify checks the signature and expiry of a presented token and recovers
// its claims. The signature is verified before any claim is trusted, and the
// signing method is pinned to HS256 so a forged header cannot downgrade
// verification.
func (s *Service) Verify(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeTokenMalformed, "empty token")
	}

	claims := new(SessionClaims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, dErrors.New(dErrors.CodeTokenExpired, "token expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, dErrors.New(dErrors.CodeInvalidSignature, "invalid token signature")
		default:
			return nil, dErrors.New(dErrors.CodeTokenMalformed, "malformed token")
		}
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeInvalidSignature, "invalid token signature")
	}

	if claims.Subject == "" || claims.Role == "" || claims.School == "" {
		return nil, dErrors.New(dErrors.CodeTokenMalformed, "token missing required claims")
	}

	return claims, nil
}
