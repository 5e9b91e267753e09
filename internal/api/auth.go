package api

import (
	"context"
	"net/http"

	"libraclient/internal/session"
)

type authEnvelope struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// Login exchanges credentials for a bearer token and the account it belongs
// to. The caller decides where the token lives; the client itself only
// attaches whatever SetToken installed.
func (c *Client) Login(ctx context.Context, email, password string) (string, *session.User, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out authEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out, http.StatusOK); err != nil {
		return "", nil, err
	}
	return out.Token, out.User, nil
}

// Register creates an account and returns a token for it.
func (c *Client) Register(ctx context.Context, email, name, password string, role session.Role) (string, *session.User, error) {
	body := struct {
		Email    string       `json:"email"`
		Name     string       `json:"name"`
		Password string       `json:"password"`
		Role     session.Role `json:"role,omitempty"`
	}{Email: email, Name: name, Password: password, Role: role}

	var out authEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out, http.StatusCreated); err != nil {
		return "", nil, err
	}
	return out.Token, out.User, nil
}

// Logout revokes the current token on the backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, http.StatusNoContent)
}

// Me fetches the account behind the current token.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	var out struct {
		User *session.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.User, nil
}
