package mediaclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestSession_LoginSuccess(t *testing.T) {
	server := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(AuthResponse{
			Token: "token-123",
			User:  &User{ID: "u1", Username: "tester", Email: "test@example.com"},
		})
	})

	client := NewClient(server.URL)
	session := NewSession(client)

	assert.NoError(t, session.Login(context.Background(), "test@example.com", "password123"))
	assert.Equal(t, StateAuthenticated, session.State())
	assert.Equal(t, "token-123", client.Storage().Token())

	user := session.User()
	assert.NotNil(t, user)
	assert.Equal(t, "tester", user.Username)
}

func TestSession_LoginFailureStaysUnauthenticated(t *testing.T) {
	server := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	})

	client := NewClient(server.URL)
	session := NewSession(client)

	err := session.Login(context.Background(), "test@example.com", "wrong")
	assert.Error(t, err)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, StateUnauthenticated, session.State())
	assert.Nil(t, session.User())
	assert.Empty(t, client.Storage().Token())
}

func TestSession_LogoutClearsTokenEvenWhenServerFails(t *testing.T) {
	server := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := NewClient(server.URL)
	client.Storage().SetToken("token-123")
	session := NewSession(client)

	err := session.Logout(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateUnauthenticated, session.State())
	assert.Nil(t, session.User())
	assert.Empty(t, client.Storage().Token())
}

func TestSession_RestoreWithoutToken(t *testing.T) {
	client := NewClient("http://unused.invalid")
	session := NewSession(client)

	assert.NoError(t, session.Restore(context.Background()))
	assert.Equal(t, StateUnauthenticated, session.State())
}

func TestSession_RestoreWithValidToken(t *testing.T) {
	server := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stored-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]*User{
			"user": {ID: "u1", Username: "tester"},
		})
	})

	client := NewClient(server.URL)
	client.Storage().SetToken("stored-token")
	session := NewSession(client)

	assert.NoError(t, session.Restore(context.Background()))
	assert.Equal(t, StateAuthenticated, session.State())
	assert.Equal(t, "tester", session.User().Username)
}

func TestSession_RestoreDropsRejectedToken(t *testing.T) {
	expiredFired := false
	server := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := NewClient(server.URL, WithSessionExpiredHandler(func() {
		expiredFired = true
	}))
	client.Storage().SetToken("stale-token")
	session := NewSession(client)

	assert.Error(t, session.Restore(context.Background()))
	assert.Equal(t, StateUnauthenticated, session.State())
	assert.Empty(t, client.Storage().Token())
	assert.True(t, expiredFired)
}

func TestSession_RefreshStoresNewToken(t *testing.T) {
	server := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		assert.Equal(t, "Bearer old-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"token": "new-token"})
	})

	client := NewClient(server.URL)
	client.Storage().SetToken("old-token")
	session := NewSession(client)

	assert.NoError(t, session.Refresh(context.Background()))
	assert.Equal(t, "new-token", client.Storage().Token())
}

func TestSession_UpdateUserMergesPatch(t *testing.T) {
	server := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AuthResponse{
			Token: "token-123",
			User:  &User{ID: "u1", Username: "before", FirstName: "Ada"},
		})
	})

	client := NewClient(server.URL)
	session := NewSession(client)
	assert.NoError(t, session.Login(context.Background(), "a@example.com", "pw"))

	after := "after"
	session.UpdateUser(UserPatch{Username: &after})

	user := session.User()
	assert.Equal(t, "after", user.Username)
	assert.Equal(t, "Ada", user.FirstName)
}

func TestClient_UnauthorizedWithoutTokenKeepsStorageUntouched(t *testing.T) {
	server := authServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	expiredFired := false
	client := NewClient(server.URL, WithSessionExpiredHandler(func() {
		expiredFired = true
	}))

	_, err := client.Login(context.Background(), "a@example.com", "wrong")
	assert.Error(t, err)
	// A 401 on a credential attempt is not an expired session.
	assert.False(t, expiredFired)
}

func TestFileStorage_RoundTrip(t *testing.T) {
	path := t.TempDir() + "/token"
	storage := NewFileStorage(path)

	assert.Empty(t, storage.Token())
	assert.NoError(t, storage.SetToken("persisted"))
	assert.Equal(t, "persisted", storage.Token())

	assert.NoError(t, storage.Clear())
	assert.Empty(t, storage.Token())
	// Clearing twice is still fine.
	assert.NoError(t, storage.Clear())
}
