package ports

import (
	"context"

	"github.com/cobros/console-gateway/internal/core/domain"
)

// RegistrationInput is forwarded verbatim to the remote auth service.
// Registration never implies login.
type RegistrationInput struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty"`
}

// RegistrationResult is the remote service's answer, returned to the caller
// unchanged.
type RegistrationResult struct {
	Username string `json:"username"`
	Message  string `json:"message,omitempty"`
}

// AuthService is the remote authentication collaborator. Credential failures
// surface as the domain sentinels; a transport failure with no response wraps
// domain.ErrNoConnection.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.Identity, string, error)
	Register(ctx context.Context, input RegistrationInput) (*RegistrationResult, error)
	Logout(ctx context.Context, token string) error
}

// Invalidator receives the forced-invalidation signal raised by the HTTP
// collaborator when any upstream request is rejected as unauthorized. The
// signal originates there; consumers only react to it.
type Invalidator interface {
	SessionInvalidated(reason string)
}
