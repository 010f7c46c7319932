package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cellarstock/inventory-auth/internal/core/domain"
	"github.com/cellarstock/inventory-auth/internal/core/gate"
)

type stubSessions struct {
	state domain.SessionState
}

func (s stubSessions) State() domain.SessionState { return s.state }

func runGate(t *testing.T, state domain.SessionState, area domain.Area, target string) (*httptest.ResponseRecorder, bool, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Gate(stubSessions{state: state}, area)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called, c
}

func TestGate_PendingWhileBusy(t *testing.T) {
	admin := &domain.Account{ID: "1", Username: "alice", Role: domain.RoleAdmin}
	rec, called, _ := runGate(t, domain.SessionState{Account: admin, Busy: true}, gate.AdminArea, "/admin/dashboard")

	if called {
		t.Fatal("protected handler must not run while busy")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestGate_UnauthenticatedRedirectsToLogin(t *testing.T) {
	rec, called, _ := runGate(t, domain.SessionState{}, gate.AdminArea, "/admin/products?page=2")

	if called {
		t.Fatal("should not reach next")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	want := "/login?from=%2Fadmin%2Fproducts%3Fpage%3D2"
	if got := rec.Header().Get(echo.HeaderLocation); got != want {
		t.Fatalf("expected Location %q, got %q", want, got)
	}
}

func TestGate_ForbiddenRedirectsToRoot(t *testing.T) {
	staff := &domain.Account{ID: "2", Username: "bob", Role: domain.RoleStaff}
	rec, called, _ := runGate(t, domain.SessionState{Account: staff}, gate.AdminArea, "/admin/dashboard")

	if called {
		t.Fatal("should not reach next")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != "/" {
		t.Fatalf("expected redirect to /, got %q", got)
	}
}

func TestGate_AdmittedInjectsShell(t *testing.T) {
	staff := &domain.Account{ID: "2", Username: "bob", Role: domain.RoleStaff}
	rec, called, c := runGate(t, domain.SessionState{Account: staff}, gate.StaffArea, "/staff/stocks")

	if !called {
		t.Fatal("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.Get(KeyRole) != domain.RoleStaff {
		t.Fatalf("role not set: %v", c.Get(KeyRole))
	}
	if c.Get(KeyLayout) != gate.LayoutStaff {
		t.Fatalf("layout not set: %v", c.Get(KeyLayout))
	}
	acc, _ := c.Get(KeyAccount).(*domain.Account)
	if acc == nil || acc.Username != "bob" {
		t.Fatalf("account not set: %+v", acc)
	}
}

func TestGate_EmptyAllowedRolesAdmitsNobody(t *testing.T) {
	admin := &domain.Account{ID: "1", Username: "alice", Role: domain.RoleAdmin}
	closed := domain.Area{Name: "closed", Prefix: "/closed"}
	rec, called, _ := runGate(t, domain.SessionState{Account: admin}, closed, "/closed/x")

	if called {
		t.Fatal("empty allowed-role set must not admit")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
}
