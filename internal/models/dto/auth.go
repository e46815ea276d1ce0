package dto

import "github.com/hongminglow/afriglobal-be/internal/identity"

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName" validate:"required"`
}

// SignupResponse carries either a full profile or, when profile creation was
// deferred, a PendingProfile with only the identity id and email.
type SignupResponse struct {
	User    any    `json:"user"`
	Message string `json:"message"`
}

type PendingProfile struct {
	Email string `json:"email"`
	ID    string `json:"id"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User    *identity.User    `json:"user"`
	Session *identity.Session `json:"session"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
