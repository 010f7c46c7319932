package ports

import (
	"context"

	"github.com/cellarstock/inventory-auth/internal/core/domain"
)

// SessionManager owns the authentication lifecycle and the single current
// session of the process.
type SessionManager interface {
	Register(ctx context.Context, username, credential string) (*domain.Account, error)
	Login(ctx context.Context, username, credential string) (*domain.Account, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Account, error)
	AssignRole(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	State() domain.SessionState
}
