package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellarstock/inventory-auth/internal/api/handler"
	"github.com/cellarstock/inventory-auth/internal/core/service"
	"github.com/cellarstock/inventory-auth/internal/infrastructure/db/memory"
)

func newTestRouter(t *testing.T) (*echo.Echo, *service.SessionManager) {
	t.Helper()
	sessions := service.NewSessionManager(memory.NewStore(), zerolog.Nop())
	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Sessions:   sessions,
		Log:        zerolog.Nop(),
		Checks:     map[string]handler.PingFunc{"memory": func(context.Context) error { return nil }},
		Registerer: reg,
		Gatherer:   reg,
	})
	return e, sessions
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRouter_LifecycleAndGate(t *testing.T) {
	e, sessions := newTestRouter(t)

	// Hydration has not run yet.
	rec := do(e, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	sessions.Hydrate(context.Background())

	rec = do(e, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?from=%2Fadmin%2Fdashboard", rec.Header().Get("Location"))

	rec = do(e, http.MethodPost, "/auth/register", `{"username":"a","password":"1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "/admin/dashboard", body["redirect"])
	assert.Equal(t, "admin", body["account"].(map[string]any)["role"])

	rec = do(e, http.MethodGet, "/admin/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-layout", decode(t, rec)["layout"])

	rec = do(e, http.MethodGet, "/staff/dashboard", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = do(e, http.MethodGet, "/admin/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/auth/register", `{"username":"b","password":"2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "staff", decode(t, rec)["account"].(map[string]any)["role"])

	rec = do(e, http.MethodGet, "/admin/products", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = do(e, http.MethodGet, "/staff/stocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "staff-layout", decode(t, rec)["layout"])

	rec = do(e, http.MethodPost, "/auth/login", `{"username":"a","password":"2"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid username or password", decode(t, rec)["error"])

	// Failed login leaves b signed in.
	rec = do(e, http.MethodGet, "/auth/session", "")
	assert.Equal(t, "b", decode(t, rec)["account"].(map[string]any)["username"])

	rec = do(e, http.MethodPost, "/auth/login", `{"username":"a","password":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AuthErrors(t *testing.T) {
	e, sessions := newTestRouter(t)
	sessions.Hydrate(context.Background())

	rec := do(e, http.MethodPost, "/auth/register", `{"username":"","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid input", decode(t, rec)["error"])

	rec = do(e, http.MethodPost, "/auth/login", `{"username":"","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid username or password", decode(t, rec)["error"])

	rec = do(e, http.MethodPost, "/auth/register", `{"username":"a","password":"1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPost, "/auth/register", `{"username":"a","password":"other"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username already taken", decode(t, rec)["error"])

	rec = do(e, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(e, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPatch, "/auth/profile", `{"display_name":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/auth/accounts", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AccountAdministration(t *testing.T) {
	e, sessions := newTestRouter(t)
	sessions.Hydrate(context.Background())

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/auth/register", `{"username":"a","password":"1"}`).Code)
	rec := do(e, http.MethodPost, "/auth/register", `{"username":"b","password":"2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	bID := decode(t, rec)["account"].(map[string]any)["id"].(string)

	rec = do(e, http.MethodGet, "/auth/accounts", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPatch, "/auth/profile", `{"display_name":"Bee","role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode(t, rec)
	assert.Equal(t, "staff", profile["role"])
	assert.Equal(t, "Bee", profile["display_name"])
	assert.NotEmpty(t, profile["profile_updated_at"])

	require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/auth/login", `{"username":"a","password":"1"}`).Code)

	rec = do(e, http.MethodGet, "/auth/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 2)
	assert.NotContains(t, rec.Body.String(), "credential")

	rec = do(e, http.MethodPut, "/auth/accounts/"+bID+"/role", `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decode(t, rec)["role"])

	rec = do(e, http.MethodPut, "/auth/accounts/missing/role", `{"role":"admin"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_EntryPointsAndProbes(t *testing.T) {
	e, sessions := newTestRouter(t)

	rec := do(e, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "loading", decode(t, rec)["session"])

	sessions.Hydrate(context.Background())

	rec = do(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = do(e, http.MethodGet, "/login?from=%2Fstaff%2Fstocks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/staff/stocks", decode(t, rec)["return_to"])

	rec = do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/health/ready", "")
	assert.Equal(t, "ready", decode(t, rec)["session"])

	rec = do(e, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
