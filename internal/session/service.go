package session

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when the backend rejects the stored token or
// the supplied credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Service defines the session and identity operations available to views.
type Service interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*User, error)
	Register(ctx context.Context, email, name, password string, role Role) (*User, error)
	Logout(ctx context.Context) error
	CurrentUser() (*User, bool)
	Can(cap Capability) bool
}

// Backend is the slice of the REST API the session layer needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, *User, error)
	Register(ctx context.Context, email, name, password string, role Role) (string, *User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*User, error)
	SetToken(token string)
}
