// Package httptransport is the thin HTTP layer. It delegates to domain
// services without embedding business logic so transport concerns stay isolated.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	authmodels "pinauth/internal/auth/models"
	"pinauth/internal/platform/middleware"
	provmodels "pinauth/internal/provision/models"
	dErrors "pinauth/pkg/domain-errors"
	"pinauth/pkg/httputil"
)

// AuthService authenticates a PIN and issues a session token.
type AuthService interface {
	Authenticate(ctx context.Context, req *authmodels.LoginRequest) (*authmodels.LoginResult, error)
}

// ProvisionService creates new user credentials.
type ProvisionService interface {
	Provision(ctx context.Context, req *provmodels.CreateUserRequest) (*provmodels.CreateUserResult, error)
}

// Handler holds the services behind the HTTP surface.
type Handler struct {
	auth      AuthService
	provision ProvisionService
	tokens    middleware.TokenVerifier
	logger    *slog.Logger
}

// NewHandler constructs the HTTP handler.
func NewHandler(auth AuthService, provision ProvisionService, tokens middleware.TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{
		auth:      auth,
		provision: provision,
		tokens:    tokens,
		logger:    logger,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authmodels.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	res, err := h.auth.Authenticate(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The token travels as an httpOnly cookie so scripts never see it; Max-Age
	// matches the token TTL exactly.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(res.ExpiresIn.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message":     "login successful",
		"school_slug": res.SchoolSlug,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	// Expire the cookie client-side; the token itself stays valid until its
	// expiry since no server-side session state exists.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetSessionClaims(r.Context())
	if claims == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}
	identity := claims.Identity()
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"sub":    identity.UserID,
		"name":   identity.Name,
		"role":   identity.RoleKey,
		"school": identity.SchoolSlug,
		"sector": identity.SectorKey,
	})
}
