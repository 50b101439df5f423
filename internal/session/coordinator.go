package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/curioplatform/curio-cli/internal/models"
	"github.com/curioplatform/curio-cli/internal/observability"
	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/version"
)

// refreshTimeout bounds the refresh round trip itself.
const refreshTimeout = 15 * time.Second

// Coordinator owns the refresh episode lifecycle. Any number of callers may
// hit Refresh concurrently; a single HTTP call is issued per episode and every
// caller observes the same settled outcome. After settlement the episode is
// forgotten, so the next failure starts a fresh one.
//
// The coordinator talks to the backend through its own jar-equipped client,
// never through the request gateway, so refresh calls are structurally exempt
// from the gateway's 401 handling.
type Coordinator struct {
	group singleflight.Group

	httpClient *http.Client
	base       string

	state  *State
	marker MarkerProvider
	router *Router
	nav    Navigator

	metrics *observability.Collector
	trace   *observability.TraceWriter
}

// CoordinatorConfig wires a Coordinator.
type CoordinatorConfig struct {
	HTTPClient *http.Client // must carry the cookie jar
	BaseURL    string
	State      *State
	Marker     MarkerProvider
	Router     *Router
	Navigator  Navigator
	Metrics    *observability.Collector
	Trace      *observability.TraceWriter
}

// NewCoordinator creates a refresh coordinator.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	return &Coordinator{
		httpClient: cfg.HTTPClient,
		base:       cfg.BaseURL,
		state:      cfg.State,
		marker:     cfg.Marker,
		router:     cfg.Router,
		nav:        cfg.Navigator,
		metrics:    cfg.Metrics,
		trace:      cfg.Trace,
	}
}

// refreshResult is what settles an episode.
type refreshResult struct {
	token string
	user  *models.User
}

// Refresh exchanges the refresh credential for a new access token. Concurrent
// callers collapse onto one in-flight episode; all resume with its outcome.
// On success Token Store and Session State are already updated when this
// returns. On authoritative failure the session is torn down and a single
// navigate-to-login intent has been emitted if the current route is protected.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	issued := false
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		issued = true
		return c.refresh(ctx)
	})

	c.metrics.RecordRefresh(issued, err != nil)

	if err != nil {
		return "", err
	}
	return v.(*refreshResult).token, nil
}

func (c *Coordinator) refresh(ctx context.Context) (*refreshResult, error) {
	// A refresh that starts must settle even if the triggering caller goes
	// away; waiters are resumed from here, not from the caller's context.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()

	if !c.marker.RefreshPlausible() {
		// No plausible credential: settle as failure without a round trip.
		c.trace.Event("refresh skipped: no session hint cookie")
		c.settleFailure(true)
		return nil, output.ErrSessionEnded()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/auth/refresh", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	c.trace.Event("refresh call issued")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all. The session is torn down, but the user is not
		// bounced to login over what may be a transient outage.
		c.trace.Event("refresh failed: %v", err)
		c.settleFailure(false)
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		c.trace.Event("refresh rejected: HTTP %d", resp.StatusCode)
		c.settleFailure(true)
		return nil, output.ErrSessionEnded()
	}

	var body struct {
		AccessToken string       `json:"access_token"`
		User        *models.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.AccessToken == "" {
		c.trace.Event("refresh failed: malformed response")
		c.settleFailure(true)
		return nil, output.ErrSessionEnded()
	}

	c.state.SetAuth(true, body.User, body.AccessToken)
	c.trace.Event("refresh settled: success")
	return &refreshResult{token: body.AccessToken, user: body.User}, nil
}

// settleFailure tears the session down. navigate controls whether a single
// navigate-to-login intent is emitted for protected routes.
func (c *Coordinator) settleFailure(navigate bool) {
	c.state.Reset()

	if !navigate || c.nav == nil {
		return
	}
	route := c.router.Current()
	if c.router.IsPublic(route) {
		return
	}
	c.metrics.RecordNavigation()
	c.nav.NavigateToLogin("session expired")
}
