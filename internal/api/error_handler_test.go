package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/cellarstock/inventory-auth/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, "invalid input"},
		{"invalid role", domain.ErrInvalidRole, http.StatusBadRequest, "invalid role"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid username or password"},
		{"no session", domain.ErrNotAuthenticated, http.StatusUnauthorized, "not authenticated"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"not found", domain.ErrAccountNotFound, http.StatusNotFound, "account not found"},
		{"taken", fmt.Errorf("register: %w", domain.ErrUsernameTaken), http.StatusConflict, "username already taken"},
		{"echo error", echo.NewHTTPError(http.StatusNotFound, "page not found"), http.StatusNotFound, "page not found"},
		{"unknown", errors.New("redis: connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.msg), rec.Body.String())
		})
	}
}
