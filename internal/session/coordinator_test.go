package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioplatform/curio-cli/internal/observability"
	"github.com/curioplatform/curio-cli/internal/output"
)

type fakeMarker struct{ plausible bool }

func (f fakeMarker) RefreshPlausible() bool { return f.plausible }

type fakeFlags struct{ status ContinuationStatus }

func (f fakeFlags) Read() ContinuationStatus { return f.status }

type coordFixture struct {
	coord   *Coordinator
	state   *State
	tokens  *MemoryTokenStore
	metrics *observability.Collector
	navs    *int32
}

func newCoordFixture(t *testing.T, server *httptest.Server, plausible bool, route string) *coordFixture {
	t.Helper()
	tokens := NewMemoryTokenStore()
	state := NewState(tokens)
	router := NewRouter(func(r string) bool { return r == RouteHome || r == RouteLogin || r == RouteNotices })
	router.Enter(route)

	var navs int32
	metrics := observability.NewCollector()
	coord := NewCoordinator(CoordinatorConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		State:      state,
		Marker:     fakeMarker{plausible: plausible},
		Router:     router,
		Navigator:  NavigatorFunc(func(string) { atomic.AddInt32(&navs, 1) }),
		Metrics:    metrics,
	})
	return &coordFixture{coord: coord, state: state, tokens: tokens, metrics: metrics, navs: &navs}
}

func refreshOKHandler(calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Write([]byte(`{"access_token":"tok-fresh","user":{"id":"u1","role":"curator"}}`))
	}
}

func TestCoordinatorRefreshSuccessSettlesState(t *testing.T) {
	var calls int32
	server := httptest.NewServer(refreshOKHandler(&calls))
	defer server.Close()

	fx := newCoordFixture(t, server, true, "payments")
	token, err := fx.coord.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-fresh", token)

	snap := fx.state.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.Equal(t, "u1", snap.User.ID)
	assert.Equal(t, "tok-fresh", fx.tokens.Get())
	assert.Zero(t, atomic.LoadInt32(fx.navs))
}

func TestCoordinatorConcurrentCallersShareOneEpisode(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		w.Write([]byte(`{"access_token":"tok-shared","user":{"id":"u1"}}`))
	}))
	defer server.Close()

	fx := newCoordFixture(t, server, true, "payments")

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]string, waiters)
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = fx.coord.Refresh(context.Background())
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "one upstream call per episode")
	for i := 0; i < waiters; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok-shared", results[i])
	}
}

func TestCoordinatorEpisodeForgottenAfterSettlement(t *testing.T) {
	var calls int32
	server := httptest.NewServer(refreshOKHandler(&calls))
	defer server.Close()

	fx := newCoordFixture(t, server, true, "payments")
	_, err := fx.coord.Refresh(context.Background())
	require.NoError(t, err)
	_, err = fx.coord.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "each sequential refresh is its own episode")
}

func TestCoordinatorRejectionTearsDownAndNavigatesOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fx := newCoordFixture(t, server, true, "payments")
	fx.state.SetAuth(true, nil, "")
	fx.tokens.Set("tok-old")

	_, err := fx.coord.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, output.CodeSessionEnded, output.AsError(err).Code)

	assert.False(t, fx.state.Snapshot().Authenticated)
	assert.Empty(t, fx.tokens.Get())
	assert.Equal(t, int32(1), atomic.LoadInt32(fx.navs))
}

func TestCoordinatorConcurrentFailuresNavigateOnce(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fx := newCoordFixture(t, server, true, "payments")

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.coord.Refresh(context.Background())
			assert.Equal(t, output.CodeSessionEnded, output.AsError(err).Code)
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(fx.navs), "one navigation intent per episode")
}

func TestCoordinatorNoNavigationOnPublicRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fx := newCoordFixture(t, server, true, RouteNotices)
	_, err := fx.coord.Refresh(context.Background())
	require.Error(t, err)

	assert.False(t, fx.state.Snapshot().Authenticated)
	assert.Zero(t, atomic.LoadInt32(fx.navs))
}

func TestCoordinatorSkipsCallWithoutMarker(t *testing.T) {
	var calls int32
	server := httptest.NewServer(refreshOKHandler(&calls))
	defer server.Close()

	fx := newCoordFixture(t, server, false, "payments")
	_, err := fx.coord.Refresh(context.Background())

	require.Error(t, err)
	assert.Equal(t, output.CodeSessionEnded, output.AsError(err).Code)
	assert.Zero(t, atomic.LoadInt32(&calls), "no round trip without a plausible credential")
	assert.Equal(t, int32(1), atomic.LoadInt32(fx.navs))
}

func TestCoordinatorTransportErrorDoesNotNavigate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	fx := newCoordFixture(t, server, true, "payments")
	fx.tokens.Set("tok-old")

	_, err := fx.coord.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, output.CodeNetwork, output.AsError(err).Code)

	// Torn down, but not bounced to login over a possible transient outage.
	assert.False(t, fx.state.Snapshot().Authenticated)
	assert.Empty(t, fx.tokens.Get())
	assert.Zero(t, atomic.LoadInt32(fx.navs))
}

func TestCoordinatorSettlesDespiteCallerCancellation(t *testing.T) {
	var calls int32
	server := httptest.NewServer(refreshOKHandler(&calls))
	defer server.Close()

	fx := newCoordFixture(t, server, true, "payments")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The episode runs on a detached context; a dead caller context does not
	// abort the exchange.
	token, err := fx.coord.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-fresh", token)
	assert.True(t, fx.state.Snapshot().Authenticated)
}

func TestCoordinatorMalformedResponseIsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":""}`))
	}))
	defer server.Close()

	fx := newCoordFixture(t, server, true, "payments")
	_, err := fx.coord.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, output.CodeSessionEnded, output.AsError(err).Code)
	assert.False(t, fx.state.Snapshot().Authenticated)
}

func TestCoordinatorRecordsRefreshMetrics(t *testing.T) {
	var calls int32
	server := httptest.NewServer(refreshOKHandler(&calls))
	defer server.Close()

	fx := newCoordFixture(t, server, true, "payments")
	_, err := fx.coord.Refresh(context.Background())
	require.NoError(t, err)

	snap := fx.metrics.Snapshot()
	assert.Equal(t, 1, snap.RefreshCalls)
	assert.Zero(t, snap.RefreshFailures)
}
