package auth

import (
	"context"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

// Provider owns the session lifecycle. Every failure is an auth error
// carrying a message that can be shown to the user.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*internal.Session, error)
	SignIn(ctx context.Context, email, password string) (*internal.Session, error)
	SignOut(ctx context.Context, token string) error
	Validate(ctx context.Context, token string) (*internal.Session, error)
}

var (
	ErrInvalidCredentials = internal.NewAuthError("invalid login credentials", nil)
	ErrInvalidToken       = internal.NewAuthError("invalid or expired session", nil)
	ErrUserExists         = internal.NewAuthError("user already registered", nil)
)

// MinPasswordLength matches the hosted auth service default.
const MinPasswordLength = 6
