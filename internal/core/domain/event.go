package domain

import "time"

// AuthEventKind names a session lifecycle outcome recorded in the audit trail.
type AuthEventKind string

const (
	EventRegister      AuthEventKind = "register"
	EventLogin         AuthEventKind = "login"
	EventLoginFailed   AuthEventKind = "login_failed"
	EventLogout        AuthEventKind = "logout"
	EventProfileUpdate AuthEventKind = "profile_update"
	EventRoleAssign    AuthEventKind = "role_assign"
)

// AuthEvent is an audit record. AccountID is empty for failed logins.
type AuthEvent struct {
	Kind      AuthEventKind
	AccountID string
	Username  string
	Role      Role
	Timestamp time.Time
}
