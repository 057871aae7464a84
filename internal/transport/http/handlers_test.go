package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authservice "pinauth/internal/auth/service"
	"pinauth/internal/credential"
	"pinauth/internal/platform/health"
	"pinauth/internal/platform/middleware"
	"pinauth/internal/provision"
	provmodels "pinauth/internal/provision/models"
	provstore "pinauth/internal/provision/store"
	"pinauth/internal/token"
)

const tokenTTL = time.Hour

// newTestServer assembles the full stack over the in-memory store, seeded with
// two tenants and one user per tenant plus an admin.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := provstore.NewInMemory()
	st.AddOrganization(provmodels.Organization{Slug: "knn", Name: "KNN Idiomas"}, "adm", "pedagogico")
	st.AddOrganization(provmodels.Organization{Slug: "phenom", Name: "Phenom"}, "adm")
	for _, role := range []string{"diretor", "lider", "sr", "jr"} {
		st.AddRole(role)
	}

	pool := credential.NewVerifyPool(credential.NewHasher(bcrypt.MinCost), 4)
	tokens := token.New("test-signing-key", "pinauth-test", tokenTTL)

	provisioner := provision.New(st, pool, provision.WithLogger(logger))
	for _, seed := range []provmodels.CreateUserRequest{
		{Name: "Dana Diretora", Pin: "4321", SchoolSlug: "knn", SectorKey: "adm", RoleKey: "diretor"},
		{Name: "Sofia Silva", Pin: "1234", SchoolSlug: "knn", SectorKey: "pedagogico", RoleKey: "sr"},
		{Name: "Leo Lima", Pin: "5678", SchoolSlug: "phenom", SectorKey: "adm", RoleKey: "lider"},
	} {
		_, err := provisioner.Provision(context.Background(), &seed)
		require.NoError(t, err)
	}

	authenticator := authservice.New(st, pool, tokens, authservice.WithLogger(logger))
	handler := NewHandler(authenticator, provisioner, tokens, logger)
	srv := httptest.NewServer(NewRouter(handler, health.New("test"), nil, logger))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func login(t *testing.T, srv *httptest.Server, pin string) *http.Cookie {
	t.Helper()
	resp := postJSON(t, srv, "/auth/login", map[string]string{"pin": pin})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	resp.Body.Close()
	return cookie
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/auth/login", map[string]string{"pin": "1234"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(tokenTTL.Seconds()), cookie.MaxAge)

	body := decodeBody(t, resp)
	assert.Equal(t, "knn", body["school_slug"])
	assert.Equal(t, "login successful", body["message"])
}

func TestLogin_TenantScopedSlug(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/auth/login", map[string]string{"pin": "5678"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "phenom", decodeBody(t, resp)["school_slug"])
}

func TestLogin_Rejections(t *testing.T) {
	srv := newTestServer(t)

	// A PIN nobody has and a wrong PIN for an existing identifier must be
	// indistinguishable from the outside.
	unknown := postJSON(t, srv, "/auth/login", map[string]string{"pin": "9999"})
	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	mismatch := postJSON(t, srv, "/auth/login", map[string]string{
		"pin_identifier": "1234", "pin": "0000",
	})
	require.Equal(t, http.StatusUnauthorized, mismatch.StatusCode)
	assert.Equal(t, decodeBody(t, unknown), decodeBody(t, mismatch))
	assert.Empty(t, unknown.Cookies())
}

func TestLogin_InvalidInput(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/auth/login", map[string]string{"pin": "12"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "validation")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/login", bytes.NewReader([]byte(`{"pin":"1234"}`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")
	resp2, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp2.StatusCode)
}

func TestMe(t *testing.T) {
	srv := newTestServer(t)
	cookie := login(t, srv, "1234")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Sofia Silva", body["name"])
	assert.Equal(t, "sr", body["role"])
	assert.Equal(t, "knn", body["school"])
	assert.Equal(t, "pedagogico", body["sector"])
}

func TestMe_NoSession(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/auth/logout", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestCreateUser(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "4321")

	resp := postJSON(t, srv, "/users", provmodels.CreateUserRequest{
		Name: "Nina Nova", Pin: "7777", SchoolSlug: "knn", SectorKey: "adm", RoleKey: "jr",
	}, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Nina Nova", body["name"])
	assert.NotEmpty(t, body["id"])

	// The freshly provisioned credential can log in immediately.
	loginResp := postJSON(t, srv, "/auth/login", map[string]string{"pin": "7777"})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	assert.Equal(t, "knn", decodeBody(t, loginResp)["school_slug"])
}

func TestCreateUser_RequiresAdmin(t *testing.T) {
	srv := newTestServer(t)

	noSession := postJSON(t, srv, "/users", provmodels.CreateUserRequest{
		Name: "X", Pin: "7777", SchoolSlug: "knn", SectorKey: "adm", RoleKey: "jr",
	})
	assert.Equal(t, http.StatusUnauthorized, noSession.StatusCode)
	noSession.Body.Close()

	nonAdmin := login(t, srv, "1234")
	resp := postJSON(t, srv, "/users", provmodels.CreateUserRequest{
		Name: "X", Pin: "7777", SchoolSlug: "knn", SectorKey: "adm", RoleKey: "jr",
	}, nonAdmin)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateUser_UnknownReferences(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "4321")

	resp := postJSON(t, srv, "/users", provmodels.CreateUserRequest{
		Name: "X", Pin: "7777", SchoolSlug: "nope", SectorKey: "adm", RoleKey: "jr",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unknown_reference", decodeBody(t, resp)["error"])
}

func TestCreateUser_Conflict(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "4321")

	resp := postJSON(t, srv, "/users", provmodels.CreateUserRequest{
		Name: "X", Pin: "1234", SchoolSlug: "knn", SectorKey: "adm", RoleKey: "jr",
	}, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

// TestConcurrentProvisioning validates that racing requests for the same pin
// identifier produce exactly one credential; everyone else gets a conflict.
func TestConcurrentProvisioning(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "4321")

	payload, err := json.Marshal(provmodels.CreateUserRequest{
		Name: "Racy", Pin: "8888", SchoolSlug: "knn", SectorKey: "adm", RoleKey: "jr",
	})
	require.NoError(t, err)

	const attempts = 10
	statusCh := make(chan int, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			req, err := http.NewRequest(http.MethodPost, srv.URL+"/users", bytes.NewReader(payload))
			if err != nil {
				statusCh <- 0
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.AddCookie(admin)
			resp, err := srv.Client().Do(req)
			if err != nil {
				statusCh <- 0
				return
			}
			resp.Body.Close()
			statusCh <- resp.StatusCode
		}()
	}

	created, conflicts := 0, 0
	for i := 0; i < attempts; i++ {
		switch status := <-statusCh; status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		default:
			t.Errorf("unexpected status %d", status)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		resp, err := srv.Client().Get(srv.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}
