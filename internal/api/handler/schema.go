package handler

import (
	"time"

	"github.com/cellarstock/inventory-auth/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ReturnTo string `json:"return_to"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ReturnTo string `json:"return_to"`
}

// updateProfileRequest only carries the caller-mergeable fields. A "role"
// key in the payload is ignored.
type updateProfileRequest struct {
	Password    *string `json:"password"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=128"`
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin staff"`
}

// accountResponse never includes the credential.
type accountResponse struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Role             string     `json:"role"`
	DisplayName      string     `json:"display_name,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ProfileUpdatedAt *time.Time `json:"profile_updated_at,omitempty"`
}

type authResponse struct {
	Account  accountResponse `json:"account"`
	Redirect string          `json:"redirect"`
}

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Loading       bool             `json:"loading"`
	Account       *accountResponse `json:"account,omitempty"`
}

type accountsResponse struct {
	Data []accountResponse `json:"data"`
}

type logoutResponse struct {
	Redirect string `json:"redirect"`
}

type loginEntryResponse struct {
	Message  string `json:"message"`
	ReturnTo string `json:"return_to,omitempty"`
}

type pageResponse struct {
	Area    string          `json:"area"`
	Page    string          `json:"page"`
	Layout  string          `json:"layout"`
	Account accountResponse `json:"account"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	resp := accountResponse{
		ID:          a.ID,
		Username:    a.Username,
		Role:        string(a.Role),
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt.UTC(),
	}
	if a.ProfileUpdatedAt != nil {
		ts := a.ProfileUpdatedAt.UTC()
		resp.ProfileUpdatedAt = &ts
	}
	return resp
}
