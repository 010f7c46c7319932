package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/cellarstock/inventory-auth/internal/api/metrics"
	"github.com/cellarstock/inventory-auth/internal/core/domain"
	"github.com/cellarstock/inventory-auth/internal/core/gate"
)

// Context keys set on admitted requests.
const (
	KeyArea    = "area"
	KeyRole    = "role"
	KeyLayout  = "layout"
	KeyAccount = "account"
)

// LoginPath is where unauthenticated callers are sent.
const LoginPath = "/login"

// SessionReader exposes the session snapshot the gate decides on.
type SessionReader interface {
	State() domain.SessionState
}

// Gate enforces the access decision for area on every request:
//   - Pending: 503 with Retry-After, nothing protected is rendered.
//   - Unauthenticated: redirect to the login entry point with a return-to hint.
//   - Forbidden: redirect to the neutral root, without naming the allowed roles.
//   - Admitted: role, layout and account snapshot are injected into the context.
func Gate(sessions SessionReader, area domain.Area) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := sessions.State()
			decision := gate.Evaluate(state, area)
			metrics.AccessDecisionsTotal.WithLabelValues(area.Name, string(decision.Kind)).Inc()

			switch decision.Kind {
			case domain.DecisionPending:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			case domain.DecisionUnauthenticated:
				return c.Redirect(http.StatusFound, LoginPath+"?from="+url.QueryEscape(c.Request().URL.RequestURI()))
			case domain.DecisionForbidden:
				return c.Redirect(http.StatusFound, "/")
			}

			c.Set(KeyArea, area)
			c.Set(KeyRole, decision.Role)
			c.Set(KeyLayout, gate.LayoutFor(decision.Role))
			c.Set(KeyAccount, state.Account)
			return next(c)
		}
	}
}
