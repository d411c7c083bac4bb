package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kicks/internal/client/apiclient"
	"kicks/internal/client/clientstore"
	"kicks/internal/client/session"
)

// fakeAPI accepts "good" as the only valid token.
func fakeAPI(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/users/profile":
			if r.Header.Get("Authorization") != "Bearer good" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Please log in to continue"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{"id": "u-1", "name": "Asha"}})
		case "/api/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "good", "user": map[string]any{"id": "u-1", "name": "Asha"}})
		case "/api/admin/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "admin-good", "admin": map[string]any{"id": "a-1", "name": "Owner", "role": "Owner"}})
		case "/api/admin/dashboard":
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Please log in to continue"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func TestStorefrontRestoreWithValidToken(t *testing.T) {
	store := clientstore.NewMemoryStore()
	require.NoError(t, store.Set(clientstore.KeyToken, "good"))

	s := session.NewStorefront(fakeAPI(t), store, nil)
	require.NoError(t, s.Restore(context.Background()))
	assert.True(t, s.Authenticated())
	assert.Equal(t, "Asha", s.User().Name)
	assert.Equal(t, "good", s.Credentials().Token)
}

func TestStorefrontRestoreRejectedTokenLogsOut(t *testing.T) {
	store := clientstore.NewMemoryStore()
	require.NoError(t, store.Set(clientstore.KeyToken, "expired"))

	redirected := false
	s := session.NewStorefront(fakeAPI(t), store, func() { redirected = true })
	err := s.Restore(context.Background())
	require.Error(t, err)
	assert.True(t, apiclient.IsKind(err, apiclient.KindUnauthorized))

	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User())
	assert.Empty(t, s.Credentials().Token)
	_, err = store.Get(clientstore.KeyToken)
	assert.ErrorIs(t, err, clientstore.ErrNotFound)
	assert.True(t, redirected)
}

func TestStorefrontLoginPersistsOnlyToken(t *testing.T) {
	store := clientstore.NewMemoryStore()
	s := session.NewStorefront(fakeAPI(t), store, nil)

	u, err := s.Login(context.Background(), "asha@kicks.test", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)

	tok, err := store.Get(clientstore.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "good", tok)
	_, err = store.Get(clientstore.KeyAdminInfo)
	assert.ErrorIs(t, err, clientstore.ErrNotFound)

	s.Logout()
	assert.False(t, s.Authenticated())
}

func TestAdminSessionRestoresWithoutRoundTrip(t *testing.T) {
	store := clientstore.NewMemoryStore()
	a := session.NewAdmin(fakeAPI(t), store, nil)
	_, err := a.Login(context.Background(), "owner@kicks.test", "Passw0rd!")
	require.NoError(t, err)

	// a dead base URL proves Restore does not call out
	again := session.NewAdmin("http://127.0.0.1:1/api", store, nil)
	require.True(t, again.Restore())
	assert.Equal(t, "Owner", again.Profile().Name)
	assert.Equal(t, "admin-good", again.Credentials().Token)
}

func TestAdminRestoreClearsHalfState(t *testing.T) {
	store := clientstore.NewMemoryStore()
	require.NoError(t, store.Set(clientstore.KeyAdminToken, "admin-good"))
	require.NoError(t, store.Set(clientstore.KeyAdminInfo, "{broken"))

	a := session.NewAdmin(fakeAPI(t), store, nil)
	assert.False(t, a.Restore())
	_, err := store.Get(clientstore.KeyAdminToken)
	assert.ErrorIs(t, err, clientstore.ErrNotFound)
}

func TestAdminUnauthorizedAnywhereTearsDown(t *testing.T) {
	store := clientstore.NewMemoryStore()
	a := session.NewAdmin(fakeAPI(t), store, nil)
	_, err := a.Login(context.Background(), "owner@kicks.test", "Passw0rd!")
	require.NoError(t, err)

	_, err = a.API.Dashboard(context.Background(), a.Credentials())
	require.Error(t, err)
	assert.False(t, a.Authenticated())
	_, err = store.Get(clientstore.KeyAdminInfo)
	assert.ErrorIs(t, err, clientstore.ErrNotFound)
}
