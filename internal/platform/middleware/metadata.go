package middleware

import (
	"context"
	"net"
	"net/http"
)

type clientMetadataKey struct{}

// ClientMetadata captures transport facts the services may want for audit
// logging. It carries no credential material.
type ClientMetadata struct {
	IP        string
	UserAgent string
}

// WithClientMetadata stores client metadata in the context. Exported for tests
// and for callers outside the HTTP path.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientMetadataKey{}, ClientMetadata{IP: ip, UserAgent: userAgent})
}

// GetClientMetadata retrieves client metadata from the context.
func GetClientMetadata(ctx context.Context) ClientMetadata {
	if md, ok := ctx.Value(clientMetadataKey{}).(ClientMetadata); ok {
		return md
	}
	return ClientMetadata{}
}

// Metadata extracts the caller's IP and User-Agent into the request context.
func Metadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
		ctx := WithClientMetadata(r.Context(), ip, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
