// Package gate decides whether the current session may enter a
// role-restricted area. It reads session state and never mutates it.
package gate

import "github.com/cellarstock/inventory-auth/internal/core/domain"

// Layout names the rendering shell selected for an admitted role.
type Layout string

const (
	LayoutAdmin Layout = "admin-layout"
	LayoutStaff Layout = "staff-layout"
)

// Evaluate computes the access decision for area from a session snapshot.
// Precedence: busy, then absent session, then role membership.
func Evaluate(state domain.SessionState, area domain.Area) domain.AccessDecision {
	switch {
	case state.Busy:
		return domain.AccessDecision{Kind: domain.DecisionPending}
	case state.Account == nil:
		return domain.AccessDecision{Kind: domain.DecisionUnauthenticated}
	case !area.Allows(state.Account.Role):
		return domain.AccessDecision{Kind: domain.DecisionForbidden}
	default:
		return domain.AccessDecision{Kind: domain.DecisionAdmitted, Role: state.Account.Role}
	}
}

// LayoutFor maps an admitted role to its rendering shell.
func LayoutFor(role domain.Role) Layout {
	if role == domain.RoleAdmin {
		return LayoutAdmin
	}
	return LayoutStaff
}
