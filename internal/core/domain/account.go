package domain

import "time"

// Role partitions accounts into the areas they may enter.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Account models a registered identity. The credential is an opaque secret
// compared by exact equality; it is never rendered to HTTP clients.
type Account struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Credential       string     `json:"credential"`
	Role             Role       `json:"role"`
	DisplayName      string     `json:"displayName,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	ProfileUpdatedAt *time.Time `json:"profileUpdatedAt,omitempty"`
}

// Clone returns a deep copy so callers never share the session snapshot.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.ProfileUpdatedAt != nil {
		ts := *a.ProfileUpdatedAt
		c.ProfileUpdatedAt = &ts
	}
	return &c
}

// ProfileUpdate carries the caller-mergeable profile fields. Nil fields are
// left untouched. Role, username, id and createdAt are deliberately absent.
type ProfileUpdate struct {
	Credential  *string
	DisplayName *string
}

// SessionState is a point-in-time view of the session manager: the signed-in
// account (nil when signed out) and whether an operation is in flight.
type SessionState struct {
	Account *Account
	Busy    bool
}
