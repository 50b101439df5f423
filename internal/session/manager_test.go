package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioplatform/curio-cli/internal/models"
	"github.com/curioplatform/curio-cli/internal/output"
)

func TestManagerLoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ada@curio.gallery", creds["email"])
		w.Write([]byte(`{"access_token":"tok-login","user":{"id":"u1","email":"ada@curio.gallery","role":"curator"}}`))
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	state := NewState(tokens)
	mgr := NewManager(server.Client(), server.URL, state, nil)

	user, err := mgr.Login(context.Background(), "ada@curio.gallery", "secret", false)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	snap := state.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.Equal(t, "tok-login", tokens.Get())
}

func TestManagerLoginBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"reason":"bad_credentials"}`))
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	state := NewState(tokens)
	mgr := NewManager(server.Client(), server.URL, state, nil)

	_, err := mgr.Login(context.Background(), "ada@curio.gallery", "wrong", false)
	require.Error(t, err)
	assert.Equal(t, output.CodeCredentials, output.AsError(err).Code)

	// Recoverable input error: nothing was torn down or mutated.
	assert.False(t, state.Snapshot().Authenticated)
	assert.Empty(t, tokens.Get())
}

func TestManagerLoginRoleNotPermitted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"reason":"role_not_permitted","role":"visitor"}`))
	}))
	defer server.Close()

	mgr := NewManager(server.Client(), server.URL, NewState(NewMemoryTokenStore()), nil)

	_, err := mgr.Login(context.Background(), "v@curio.gallery", "secret", true)
	require.Error(t, err)
	e := output.AsError(err)
	assert.Equal(t, output.CodeRole, e.Code)
	assert.Contains(t, e.Message, "visitor")
}

func TestManagerAdminSurfaceRejectsNonAdminLocally(t *testing.T) {
	var logoutCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"access_token":"tok-x","user":{"id":"u2","role":"curator"}}`))
		case "/logout":
			atomic.AddInt32(&logoutCalls, 1)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	state := NewState(tokens)
	mgr := NewManager(server.Client(), server.URL, state, nil)

	_, err := mgr.Login(context.Background(), "c@curio.gallery", "secret", true)
	require.Error(t, err)
	assert.Equal(t, output.CodeRole, output.AsError(err).Code)

	// The backend minted a session; the client tears it down rather than
	// holding a session the surface cannot use.
	assert.Equal(t, int32(1), atomic.LoadInt32(&logoutCalls))
	assert.False(t, state.Snapshot().Authenticated)
	assert.Empty(t, tokens.Get())
}

func TestManagerAdminSurfaceRejectsNullUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			// A token without an identity cannot satisfy an admin surface.
			w.Write([]byte(`{"access_token":"tok-x","user":null}`))
		case "/logout":
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	state := NewState(tokens)
	mgr := NewManager(server.Client(), server.URL, state, nil)

	_, err := mgr.Login(context.Background(), "x@curio.gallery", "secret", true)
	require.Error(t, err)
	assert.Equal(t, output.CodeRole, output.AsError(err).Code)
	assert.False(t, state.Snapshot().Authenticated)
	assert.Empty(t, tokens.Get())
}

func TestManagerAdminSurfaceAcceptsAdmin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok-admin","user":{"id":"u3","role":"admin"}}`))
	}))
	defer server.Close()

	state := NewState(NewMemoryTokenStore())
	mgr := NewManager(server.Client(), server.URL, state, nil)

	user, err := mgr.Login(context.Background(), "root@curio.gallery", "secret", true)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	assert.True(t, state.Snapshot().Authenticated)
}

func TestManagerLogoutResetsEvenWhenServerFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tokens := NewMemoryTokenStore()
	state := NewState(tokens)
	state.SetAuth(true, &models.User{ID: "u1"}, "tok-live")
	mgr := NewManager(server.Client(), server.URL, state, nil)

	require.NoError(t, mgr.Logout(context.Background()))
	assert.False(t, state.Snapshot().Authenticated)
	assert.Empty(t, tokens.Get())
}

func TestManagerLogoutResetsWhenServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := server.Client()
	server.Close()

	tokens := NewMemoryTokenStore()
	state := NewState(tokens)
	state.SetAuth(true, &models.User{ID: "u1"}, "tok-live")
	mgr := NewManager(client, server.URL, state, nil)

	require.NoError(t, mgr.Logout(context.Background()))
	assert.False(t, state.Snapshot().Authenticated)
	assert.Empty(t, tokens.Get())
}

func TestJarFlagsMapping(t *testing.T) {
	tests := []struct {
		raw  string
		want ContinuationStatus
	}{
		{"", ContinuationAbsent},
		{"continue", ContinuationPending},
		{"success", ContinuationLinked},
		{"garbage", ContinuationAbsent},
	}
	for _, tt := range tests {
		flags := JarFlags{Jar: staticJar(tt.raw)}
		assert.Equal(t, tt.want, flags.Read(), "raw %q", tt.raw)
	}
}

type staticJar string

func (s staticJar) ContinuationStatus() string { return string(s) }
