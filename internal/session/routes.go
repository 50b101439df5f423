package session

import "sync"

// Well-known routes. Commands register themselves under route names; the
// public allow-list in config decides which are viewable unauthenticated.
const (
	RouteHome     = "home"
	RouteLogin    = "login"
	RouteRegister = "register"
	RouteNotices  = "notices"
)

// Navigator consumes navigation intents. The session subsystem never touches
// a global navigation object directly; it emits an intent and a router-aware
// listener acts on it.
type Navigator interface {
	NavigateToLogin(reason string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(reason string)

func (f NavigatorFunc) NavigateToLogin(reason string) { f(reason) }

// Router tracks the current route and answers public-route queries. It stands
// in for the browser's ambient location.
type Router struct {
	mu      sync.RWMutex
	current string
	public  func(route string) bool
}

// NewRouter creates a router with the given public-route predicate.
func NewRouter(public func(route string) bool) *Router {
	if public == nil {
		public = func(string) bool { return false }
	}
	return &Router{public: public}
}

// Enter records the route being navigated to.
func (r *Router) Enter(route string) {
	r.mu.Lock()
	r.current = route
	r.mu.Unlock()
}

// Current returns the active route.
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// IsPublic reports whether route is viewable without a session.
func (r *Router) IsPublic(route string) bool {
	return r.public(route)
}
