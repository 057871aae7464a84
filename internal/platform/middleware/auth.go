package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"pinauth/internal/token"
	dErrors "pinauth/pkg/domain-errors"
	"pinauth/pkg/httputil"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session_token"

// TokenVerifier validates a presented session token and recovers its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*token.SessionClaims, error)
}

type sessionClaimsKey struct{}

// GetSessionClaims retrieves verified session claims from the context.
// Returns nil outside an authenticated request.
func GetSessionClaims(ctx context.Context) *token.SessionClaims {
	if claims, ok := ctx.Value(sessionClaimsKey{}).(*token.SessionClaims); ok {
		return claims
	}
	return nil
}

// WithSessionClaims stores verified claims in the context. Exported for handler tests.
func WithSessionClaims(ctx context.Context, claims *token.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionClaimsKey{}, claims)
}

// SessionAuth guards protected endpoints. A missing cookie or a token that
// fails verification yields the same generic 401; the precise failure code is
// logged for diagnostics only.
func SessionAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
				return
			}

			claims, err := verifier.Verify(cookie.Value)
			if err != nil {
				logger.WarnContext(r.Context(), "session token rejected",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx := WithSessionClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates an endpoint to a single role key. Must run after SessionAuth.
func RequireRole(roleKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetSessionClaims(r.Context())
			if claims == nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
				return
			}
			if claims.Role != roleKey {
				logger.WarnContext(r.Context(), "role gate rejected request",
					"required_role", roleKey,
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
