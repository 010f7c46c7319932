package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cellarstock/inventory-auth/internal/api/metrics"
	"github.com/cellarstock/inventory-auth/internal/core/domain"
	"github.com/cellarstock/inventory-auth/internal/core/gate"
	"github.com/cellarstock/inventory-auth/internal/core/ports"
)

// AuthHandler exposes the session lifecycle over HTTP.
type AuthHandler struct {
	sessions ports.SessionManager
}

func NewAuthHandler(sessions ports.SessionManager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Register creates an account and signs it in.
//
// @Summary      Register a new account
// @Description  The first account on an empty store becomes admin; later ones are staff.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	acc, err := h.sessions.Register(c.Request().Context(), req.Username, req.Password)
	observe("register", start, err)
	if err != nil {
		return err
	}
	metrics.SessionActive.Set(1)

	return c.JSON(http.StatusCreated, authResponse{
		Account:  toAccountResponse(acc),
		Redirect: redirectAfterAuth(req.ReturnTo, acc.Role),
	})
}

// Login signs in an existing account.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	acc, err := h.sessions.Login(c.Request().Context(), req.Username, req.Password)
	observe("login", start, err)
	if err != nil {
		return err
	}
	metrics.SessionActive.Set(1)

	return c.JSON(http.StatusOK, authResponse{
		Account:  toAccountResponse(acc),
		Redirect: redirectAfterAuth(req.ReturnTo, acc.Role),
	})
}

// Logout clears the current session. Calling it while signed out succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	start := time.Now()
	err := h.sessions.Logout(c.Request().Context())
	observe("logout", start, err)
	if err != nil {
		return err
	}
	metrics.SessionActive.Set(0)

	return c.JSON(http.StatusOK, logoutResponse{Redirect: "/login"})
}

// Session reports the current session and the loading indicator.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	state := h.sessions.State()
	resp := sessionResponse{Loading: state.Busy}
	if state.Account != nil {
		acc := toAccountResponse(state.Account)
		resp.Authenticated = true
		resp.Account = &acc
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateProfile changes the signed-in account's profile fields.
//
// @Summary      Update profile
// @Description  Only password and display_name are mergeable; role changes go through the role endpoint.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/profile [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	acc, err := h.sessions.UpdateProfile(c.Request().Context(), domain.ProfileUpdate{
		Credential:  req.Password,
		DisplayName: req.DisplayName,
	})
	observe("update_profile", start, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAccountResponse(acc))
}

// ListAccounts returns every registered account.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  accountsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /auth/accounts [get]
func (h *AuthHandler) ListAccounts(c echo.Context) error {
	accounts, err := h.sessions.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = toAccountResponse(a)
	}
	return c.JSON(http.StatusOK, accountsResponse{Data: out})
}

// AssignRole changes an account's role.
//
// @Summary      Assign role
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Account id"
// @Param        body  body      assignRoleRequest  true  "New role"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/accounts/{id}/role [put]
func (h *AuthHandler) AssignRole(c echo.Context) error {
	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	acc, err := h.sessions.AssignRole(c.Request().Context(), c.Param("id"), domain.Role(req.Role))
	observe("assign_role", start, err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAccountResponse(acc))
}

// redirectAfterAuth honours a local return-to path, otherwise sends the
// caller to the dashboard of its role.
func redirectAfterAuth(returnTo string, role domain.Role) string {
	if isLocalPath(returnTo) {
		return returnTo
	}
	return gate.HomeFor(role)
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}

func observe(operation string, start time.Time, err error) {
	metrics.AuthOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	metrics.AuthOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrInvalidRole):
		return "invalid_role"
	default:
		return "error"
	}
}
