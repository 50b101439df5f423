package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/session"
)

type fakeRefresher struct {
	calls  int32
	token  string
	err    error
	tokens session.TokenStore
}

// Refresh mimics the coordinator: on success the new token is already in the
// store before the gateway replays.
func (f *fakeRefresher) Refresh(ctx context.Context) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err == nil && f.tokens != nil {
		f.tokens.Set(f.token)
	}
	return f.token, f.err
}

func newTestClient(t *testing.T, server *httptest.Server, token string, refresher Refresher) (*Client, *session.MemoryTokenStore) {
	t.Helper()
	tokens := session.NewMemoryTokenStore()
	if token != "" {
		tokens.Set(token)
	}
	client := NewClient(Config{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Tokens:     tokens,
		Refresher:  refresher,
	})
	return client, tokens
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, "tok-live", nil)
	resp, err := client.Get(context.Background(), "/banners")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer tok-live", gotAuth)
}

func TestClientOmitsAuthorizationWhenNoToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, "", nil)
	_, err := client.Get(context.Background(), "/notices")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientRefreshesAndReplaysOnce(t *testing.T) {
	var attempts int32
	var replayAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		replayAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"b1"}`))
	}))
	defer server.Close()

	refresher := &fakeRefresher{token: "tok-new"}
	client, tokens := newTestClient(t, server, "tok-stale", refresher)
	refresher.tokens = tokens

	resp, err := client.Get(context.Background(), "/banners/b1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
	assert.Equal(t, "Bearer tok-new", replayAuth)
	assert.JSONEq(t, `{"id":"b1"}`, string(resp.Data))
}

func TestClientReplaysBodyExactlyOnSecondAttempt(t *testing.T) {
	var attempts int32
	bodies := make([]string, 0, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf) //nolint:errcheck
		bodies = append(bodies, string(buf))
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, "tok", &fakeRefresher{token: "tok2"})
	_, err := client.Post(context.Background(), "/banners", map[string]string{"title": "Autumn"})
	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
	assert.JSONEq(t, `{"title":"Autumn"}`, bodies[1])
}

func TestClientSecondUnauthorizedIsFinal(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	refresher := &fakeRefresher{token: "tok-new"}
	client, _ := newTestClient(t, server, "tok", refresher)
	_, err := client.Get(context.Background(), "/users")

	require.Error(t, err)
	assert.Equal(t, output.CodeAuth, output.AsError(err).Code)
	// exactly two attempts, one refresh, never a third try
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))
}

func TestClientFailedRefreshEndsSession(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	refresher := &fakeRefresher{err: output.ErrSessionEnded()}
	client, _ := newTestClient(t, server, "tok", refresher)
	_, err := client.Get(context.Background(), "/payments")

	require.Error(t, err)
	assert.Equal(t, output.CodeSessionEnded, output.AsError(err).Code)
	// no replay when the refresh itself failed
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClientRefreshNetworkErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	refresher := &fakeRefresher{err: output.ErrNetwork(context.DeadlineExceeded)}
	client, _ := newTestClient(t, server, "tok", refresher)
	_, err := client.Get(context.Background(), "/payments")

	require.Error(t, err)
	assert.Equal(t, output.CodeNetwork, output.AsError(err).Code)
}

func TestClientTransportErrorDoesNotTriggerRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	refresher := &fakeRefresher{}
	client, _ := newTestClient(t, server, "tok", refresher)
	_, err := client.Get(context.Background(), "/banners")

	require.Error(t, err)
	assert.Equal(t, output.CodeNetwork, output.AsError(err).Code)
	assert.Zero(t, atomic.LoadInt32(&refresher.calls))
}

func TestClientStatusTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		headers  map[string]string
		wantCode string
	}{
		{name: "forbidden", status: 403, wantCode: output.CodeForbidden},
		{name: "not found", status: 404, wantCode: output.CodeNotFound},
		{name: "rate limited", status: 429, headers: map[string]string{"Retry-After": "30"}, wantCode: output.CodeRateLimit},
		{name: "server error", status: 500, body: `{"error":"boom"}`, wantCode: output.CodeAPI},
		{name: "bad gateway", status: 502, wantCode: output.CodeAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			}))
			defer server.Close()

			client, _ := newTestClient(t, server, "tok", &fakeRefresher{})
			_, err := client.Get(context.Background(), "/x")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, output.AsError(err).Code)
		})
	}
}

func TestClientNonErrorStatusesPassThrough(t *testing.T) {
	for _, status := range []int{200, 201, 202, 204, 304} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer server.Close()

			client, _ := newTestClient(t, server, "tok", &fakeRefresher{})
			resp, err := client.Get(context.Background(), "/x")
			require.NoError(t, err)
			assert.Equal(t, status, resp.StatusCode)
		})
	}
}

func TestClientRateLimitHintUsesRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, "tok", &fakeRefresher{})
	_, err := client.Get(context.Background(), "/x")
	require.Error(t, err)
	assert.Contains(t, output.AsError(err).Hint, "12 seconds")
}

func TestProbeNeverRefreshes(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	refresher := &fakeRefresher{token: "tok-new"}
	client, _ := newTestClient(t, server, "tok", refresher)

	_, err := client.Probe().Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, output.CodeAuth, output.AsError(err).Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	assert.Zero(t, atomic.LoadInt32(&refresher.calls))
}

func TestProbeDecodesIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me", r.URL.Path)
		w.Write([]byte(`{"id":"u1","email":"ada@curio.gallery","nickname":"ada","role":"admin"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, "tok", nil)
	user, err := client.Probe().Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, user.IsAdmin())
}
