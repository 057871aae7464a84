package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pinauth/internal/platform/health"
	"pinauth/internal/platform/metrics"
	"pinauth/internal/platform/middleware"
	provmodels "pinauth/internal/provision/models"
)

// NewRouter wires all public endpoints with middleware. The metrics argument
// may be nil in tests.
func NewRouter(h *Handler, healthHandler *health.Handler, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Metadata)
	r.Use(middleware.Logger(logger))
	if m != nil {
		r.Use(endpointLatency(m))
	}
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.BodyLimit)

	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(h.tokens, logger))
		r.Get("/auth/me", h.handleMe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(provmodels.AdminRoleKey, logger))
			r.Post("/users", h.handleCreateUser)
		})
	})

	healthHandler.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// endpointLatency records per-route latency under the matched chi pattern so
// parameterized paths do not explode the label space.
func endpointLatency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if pattern := chi.RouteContext(r.Context()).RoutePattern(); pattern != "" {
				m.EndpointLatency.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
			}
		})
	}
}
