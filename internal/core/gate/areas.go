package gate

import "github.com/cellarstock/inventory-auth/internal/core/domain"

// AdminArea is the back office reserved to administrators.
var AdminArea = domain.Area{
	Name:         "admin",
	Prefix:       "/admin",
	AllowedRoles: []domain.Role{domain.RoleAdmin},
	Pages: []string{
		"dashboard",
		"products",
		"stocks",
		"suppliers",
		"transactions",
		"expired-products",
		"damaged-products",
		"staff-accounts",
	},
}

// StaffArea is the day-to-day workspace for staff accounts.
var StaffArea = domain.Area{
	Name:         "staff",
	Prefix:       "/staff",
	AllowedRoles: []domain.Role{domain.RoleStaff},
	Pages: []string{
		"dashboard",
		"stocks",
		"transactions",
		"expired-products",
		"damaged-products",
		"account-settings",
	},
}

// Areas lists every protected area.
func Areas() []domain.Area {
	return []domain.Area{AdminArea, StaffArea}
}

// HomeFor returns the dashboard path for role.
func HomeFor(role domain.Role) string {
	if role == domain.RoleAdmin {
		return AdminArea.Prefix + "/dashboard"
	}
	return StaffArea.Prefix + "/dashboard"
}
