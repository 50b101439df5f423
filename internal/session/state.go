package session

import (
	"sync"

	"github.com/curioplatform/curio-cli/internal/models"
)

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	Authenticated bool
	User          *models.User
	AccessToken   string
}

// State is the single source of truth for "who is signed in". Exactly one
// instance exists per process; it is constructed explicitly and injected, so
// tests build isolated instances. Mutations happen only through SetAuth and
// Reset, called by the coordinator, the bootstrapper, login, and logout.
type State struct {
	mu     sync.RWMutex
	snap   Snapshot
	tokens TokenStore

	nextSub      int
	subs         map[int]func(Snapshot)
	invalidators []func()
}

// NewState creates an unauthenticated state bound to a token store.
func NewState(tokens TokenStore) *State {
	return &State{
		tokens: tokens,
		subs:   make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetAuth transitions the session. The invariant authenticated ⇒ token != ""
// is enforced here: an authenticated transition without a token is normalized
// to unauthenticated rather than stored.
func (s *State) SetAuth(authenticated bool, user *models.User, token string) {
	if authenticated && token == "" {
		authenticated = false
		user = nil
	}
	if !authenticated {
		token = ""
		user = nil
	}

	s.mu.Lock()
	s.snap = Snapshot{Authenticated: authenticated, User: user, AccessToken: token}
	if authenticated {
		s.tokens.Set(token)
	} else {
		s.tokens.Clear()
	}
	snap := s.snap
	subs := s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Reset tears the session down: unauthenticated state, cleared token store,
// and invalidation of user-scoped caches held elsewhere in the app.
func (s *State) Reset() {
	s.mu.Lock()
	s.snap = Snapshot{}
	s.tokens.Clear()
	snap := s.snap
	subs := s.subscribersLocked()
	invalidators := append(([]func())(nil), s.invalidators...)
	s.mu.Unlock()

	for _, fn := range invalidators {
		fn()
	}
	for _, fn := range subs {
		fn(snap)
	}
}

// Subscribe registers fn for state changes and returns an unsubscribe func.
// Notifications after unsubscribe are dropped silently: a late resume landing
// on a consumer that went away must be a no-op, never a crash.
func (s *State) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// OnInvalidate registers a hook fired when user-scoped caches must be dropped
// (on Reset). Hooks are never removed; register once at wiring time.
func (s *State) OnInvalidate(fn func()) {
	s.mu.Lock()
	s.invalidators = append(s.invalidators, fn)
	s.mu.Unlock()
}

// subscribersLocked copies the subscriber set so callbacks run unlocked.
func (s *State) subscribersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
