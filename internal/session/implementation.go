package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// service implements the Service interface.
type service struct {
	backend Backend
	store   *TokenStore
	logger  *slog.Logger

	user *User
	caps CapabilitySet
}

// NewService creates a session service backed by the REST API and a token
// store. The returned service is not safe for concurrent use; it belongs to
// the single interactive session driving it.
func NewService(backend Backend, store *TokenStore, logger *slog.Logger) Service {
	return &service{
		backend: backend,
		store:   store,
		logger:  logger,
	}
}

// Init restores a previous session from the stored token, if any. A token the
// backend no longer accepts is discarded silently; any other failure is
// reported so the caller can distinguish "logged out" from "backend down".
func (s *service) Init(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	s.backend.SetToken(token)
	user, err := s.backend.Me(ctx)
	if errors.Is(err, ErrUnauthorized) {
		s.logger.Debug("stored token rejected, clearing")
		s.backend.SetToken("")
		return s.store.Clear()
	}
	if err != nil {
		return fmt.Errorf("validate stored token: %w", err)
	}

	s.setUser(user)
	return nil
}

// Login authenticates with the backend and persists the issued token.
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	token, user, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.backend.SetToken(token)
	if err := s.store.Save(token); err != nil {
		return nil, err
	}

	s.setUser(user)
	s.logger.Debug("logged in", "user", user.Email, "role", user.Role)
	return user, nil
}

// Register creates an account and starts a session with the issued token.
func (s *service) Register(ctx context.Context, email, name, password string, role Role) (*User, error) {
	token, user, err := s.backend.Register(ctx, email, name, password, role)
	if err != nil {
		return nil, err
	}

	s.backend.SetToken(token)
	if err := s.store.Save(token); err != nil {
		return nil, err
	}

	s.setUser(user)
	return user, nil
}

// Logout tells the backend to revoke the token, then clears local state. The
// local teardown happens even when the revoke call fails: the user asked to
// be logged out and the stored token must not outlive that request.
func (s *service) Logout(ctx context.Context) error {
	revokeErr := s.backend.Logout(ctx)

	s.backend.SetToken("")
	s.user = nil
	s.caps = nil

	if err := s.store.Clear(); err != nil {
		return err
	}
	if revokeErr != nil && !errors.Is(revokeErr, ErrUnauthorized) {
		return fmt.Errorf("revoke token: %w", revokeErr)
	}
	return nil
}

// CurrentUser returns the authenticated user, if any.
func (s *service) CurrentUser() (*User, bool) {
	if s.user == nil {
		return nil, false
	}
	return s.user, true
}

// Can reports whether the current session's role grants cap. With no session
// active nothing is granted.
func (s *service) Can(cap Capability) bool {
	return s.caps.Has(cap)
}

func (s *service) setUser(user *User) {
	s.user = user
	s.caps = Capabilities(user.Role)
}
