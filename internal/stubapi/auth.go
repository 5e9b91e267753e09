package stubapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"libraclient/internal/session"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	switch {
	case req.Email == "":
		writeError(w, http.StatusUnprocessableEntity, "email is required")
		return
	case strings.TrimSpace(req.Name) == "":
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	case len(req.Password) < 8:
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	role := session.RoleMember
	if req.Role != "" {
		parsed, err := session.ParseRole(req.Role)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		role = parsed
	}

	hash, salt, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acct := range s.accounts {
		if acct.user.Email == req.Email {
			writeError(w, http.StatusUnprocessableEntity, "email already registered")
			return
		}
	}

	id := uuid.New()
	acct := &account{
		user:         session.User{ID: id, Email: req.Email, Name: req.Name, Role: role},
		passwordHash: hash,
		passwordSalt: salt,
	}
	s.accounts[id] = acct

	token := uuid.NewString()
	s.tokens[token] = id

	writeJSON(w, http.StatusCreated, map[string]any{"token": token, "user": acct.user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	var acct *account
	for _, a := range s.accounts {
		if a.user.Email == req.Email {
			acct = a
			break
		}
	}
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	ok, err := verifyPassword(req.Password, acct.passwordSalt, acct.passwordHash)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token := uuid.NewString()
	s.tokens[token] = acct.user.ID

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": acct.user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")

	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": requester(r).user})
}
