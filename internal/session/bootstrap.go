package session

import (
	"context"
	"time"

	"github.com/curioplatform/curio-cli/internal/models"
	"github.com/curioplatform/curio-cli/internal/observability"
)

// DefaultProbeTimeout bounds the bootstrap identity probe so a hung backend
// cannot block rendering; timing out counts as a failed probe.
const DefaultProbeTimeout = 5 * time.Second

// Decision is the outcome of a bootstrap check.
type Decision int

const (
	DecisionUnauthorized Decision = iota
	DecisionAuthorized
)

func (d Decision) String() string {
	if d == DecisionAuthorized {
		return "authorized"
	}
	return "unauthorized"
}

// Probe fetches the current identity. The implementation must NOT retry on
// 401: a failed probe is authoritative and the bootstrapper decides what
// happens next.
type Probe interface {
	Me(ctx context.Context) (*models.User, error)
}

// Bootstrapper decides, before any protected route renders, whether the
// visitor is authenticated. It runs on every navigation into the protected
// area; the result is never cached, because the token can expire mid-session.
type Bootstrapper struct {
	state  *State
	tokens TokenStore
	coord  *Coordinator
	flags  FlagProvider
	marker MarkerProvider
	probe  Probe

	probeTimeout time.Duration

	metrics *observability.Collector
	trace   *observability.TraceWriter
}

// BootstrapperConfig wires a Bootstrapper.
type BootstrapperConfig struct {
	State        *State
	Tokens       TokenStore
	Coordinator  *Coordinator
	Flags        FlagProvider
	Marker       MarkerProvider
	Probe        Probe
	ProbeTimeout time.Duration
	Metrics      *observability.Collector
	Trace        *observability.TraceWriter
}

// NewBootstrapper creates a bootstrap gate.
func NewBootstrapper(cfg BootstrapperConfig) *Bootstrapper {
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Bootstrapper{
		state:        cfg.State,
		tokens:       cfg.Tokens,
		coord:        cfg.Coordinator,
		flags:        cfg.Flags,
		marker:       cfg.Marker,
		probe:        cfg.Probe,
		probeTimeout: timeout,
		metrics:      cfg.Metrics,
		trace:        cfg.Trace,
	}
}

// Check runs the bootstrap algorithm for a navigation into route.
func (b *Bootstrapper) Check(ctx context.Context, route string) Decision {
	b.metrics.RecordBootstrap()

	flag := b.flags.Read()

	// A pending third-party continuation admits exactly one route: the
	// registration entry, which must work without a session.
	if flag == ContinuationPending && route == RouteRegister {
		b.trace.Event("bootstrap: continuation pending, %s admitted", route)
		return DecisionAuthorized
	}

	if token := b.tokens.Get(); token != "" {
		if b.probeIdentity(ctx, token) {
			return DecisionAuthorized
		}
		// The probe failed authoritatively; it is not replayed. A refresh is
		// attempted only if one is plausible.
		b.tokens.Clear()
		b.state.Reset()
		if !b.marker.RefreshPlausible() {
			return b.unauthorized(flag, route)
		}
		return b.tryRefresh(ctx, flag, route)
	}

	if b.marker.RefreshPlausible() {
		return b.tryRefresh(ctx, flag, route)
	}

	return b.unauthorized(flag, route)
}

// probeIdentity runs the bounded liveness/identity check and seeds session
// state on success.
func (b *Bootstrapper) probeIdentity(ctx context.Context, token string) bool {
	ctx, cancel := context.WithTimeout(ctx, b.probeTimeout)
	defer cancel()

	user, err := b.probe.Me(ctx)
	if err != nil {
		b.trace.Event("bootstrap: identity probe failed: %v", err)
		return false
	}

	b.state.SetAuth(true, user, token)
	return true
}

// tryRefresh shares the coordinator's single-flight episode, so a bootstrap
// refresh and a gateway-triggered refresh collapse into one call.
func (b *Bootstrapper) tryRefresh(ctx context.Context, flag ContinuationStatus, route string) Decision {
	if _, err := b.coord.Refresh(ctx); err != nil {
		return b.unauthorized(flag, route)
	}
	return DecisionAuthorized
}

// unauthorized resolves the terminal state, letting a completed continuation
// through once: the server has already established its side, and the next
// request will pick the session up via refresh.
func (b *Bootstrapper) unauthorized(flag ContinuationStatus, route string) Decision {
	if flag == ContinuationLinked {
		b.trace.Event("bootstrap: continuation linked, %s admitted once", route)
		return DecisionAuthorized
	}
	b.trace.Event("bootstrap: unauthorized at %s", route)
	return DecisionUnauthorized
}
