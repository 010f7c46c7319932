package domain

// Area describes a role-restricted part of the application. An empty
// AllowedRoles set admits nobody.
type Area struct {
	Name         string
	Prefix       string
	AllowedRoles []Role
	Pages        []string
}

// Allows reports whether role is in the area's allowed set.
func (a Area) Allows(role Role) bool {
	for _, r := range a.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPage reports whether page is one of the area's pages.
func (a Area) HasPage(page string) bool {
	for _, p := range a.Pages {
		if p == page {
			return true
		}
	}
	return false
}

// DecisionKind enumerates the outcomes of an access check.
type DecisionKind string

const (
	DecisionPending         DecisionKind = "pending"
	DecisionUnauthenticated DecisionKind = "unauthenticated"
	DecisionForbidden       DecisionKind = "forbidden"
	DecisionAdmitted        DecisionKind = "admitted"
)

// AccessDecision is derived on every check and never stored. Role is only
// set when Kind is DecisionAdmitted.
type AccessDecision struct {
	Kind DecisionKind
	Role Role
}
