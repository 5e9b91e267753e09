package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	token    string
	user     *User
	loginErr error
	meErr    error
	meCalls  int

	installedToken string
	logoutCalls    int
	logoutErr      error
}

func (f *fakeBackend) Login(context.Context, string, string) (string, *User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.token, f.user, nil
}

func (f *fakeBackend) Register(context.Context, string, string, string, Role) (string, *User, error) {
	return f.token, f.user, nil
}

func (f *fakeBackend) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeBackend) Me(context.Context) (*User, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

func (f *fakeBackend) SetToken(token string) { f.installedToken = token }

func newTestSession(t *testing.T, backend *fakeBackend) (Service, *TokenStore) {
	t.Helper()
	store := NewTokenStore(filepath.Join(t.TempDir(), "token"))
	return NewService(backend, store, slog.New(slog.DiscardHandler)), store
}

func memberUser() *User {
	return &User{ID: uuid.New(), Email: "mia@example.com", Name: "Mia", Role: RoleMember}
}

func TestLogin_PersistsTokenAndUser(t *testing.T) {
	backend := &fakeBackend{token: "tok-123", user: memberUser()}
	svc, store := newTestSession(t, backend)

	user, err := svc.Login(context.Background(), "mia@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "mia@example.com", user.Email)
	assert.Equal(t, "tok-123", backend.installedToken)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", saved)

	current, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user, current)
	assert.True(t, svc.Can(CapBorrowSelf))
	assert.False(t, svc.Can(CapManageCatalog))
}

func TestInit_RestoresStoredSession(t *testing.T) {
	backend := &fakeBackend{token: "tok-123", user: memberUser()}
	svc, store := newTestSession(t, backend)
	require.NoError(t, store.Save("tok-123"))

	require.NoError(t, svc.Init(context.Background()))

	assert.Equal(t, "tok-123", backend.installedToken)
	_, ok := svc.CurrentUser()
	assert.True(t, ok)
}

func TestInit_NoStoredTokenIsLoggedOut(t *testing.T) {
	backend := &fakeBackend{user: memberUser()}
	svc, _ := newTestSession(t, backend)

	require.NoError(t, svc.Init(context.Background()))

	_, ok := svc.CurrentUser()
	assert.False(t, ok)
	assert.Zero(t, backend.meCalls, "no token, no validation round trip")
}

func TestInit_RejectedTokenIsDiscarded(t *testing.T) {
	backend := &fakeBackend{meErr: ErrUnauthorized}
	svc, store := newTestSession(t, backend)
	require.NoError(t, store.Save("stale-token"))

	require.NoError(t, svc.Init(context.Background()))

	_, ok := svc.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, backend.installedToken, "stale token detached from the client")

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved, "stale token removed from disk")
}

func TestInit_BackendDownIsAnError(t *testing.T) {
	backend := &fakeBackend{meErr: errors.New("connection refused")}
	svc, store := newTestSession(t, backend)
	require.NoError(t, store.Save("tok-123"))

	require.Error(t, svc.Init(context.Background()))

	// The token survives: it was never rejected, only unverifiable.
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", saved)
}

func TestLogout_ClearsLocalStateEvenWhenRevokeFails(t *testing.T) {
	backend := &fakeBackend{token: "tok-123", user: memberUser(), logoutErr: errors.New("boom")}
	svc, store := newTestSession(t, backend)
	_, err := svc.Login(context.Background(), "mia@example.com", "password123")
	require.NoError(t, err)

	err = svc.Logout(context.Background())
	require.Error(t, err, "the failed revoke is still reported")

	_, ok := svc.CurrentUser()
	assert.False(t, ok)
	assert.False(t, svc.Can(CapBorrowSelf))
	saved, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, saved)
}

func TestTokenStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "token")
	store := NewTokenStore(path)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file means no session")

	require.NoError(t, store.Save("tok-abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")
}
