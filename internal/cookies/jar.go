// Package cookies holds the browser-profile half of the session: a cookie jar
// for the API origin, persisted across invocations the way a browser persists
// its cookie store. The refresh credential lives here as an opaque cookie the
// rest of the code never reads; only the non-sensitive marker cookies are
// inspected by name.
package cookies

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"
)

// Cookies set by the backend that the client is allowed to inspect.
const (
	// MarkerCookie signals that a refresh credential may exist. Presence is
	// advisory: it makes a refresh attempt worthwhile, never guaranteed.
	MarkerCookie = "CURIO_SESSION_HINT"

	// ContinuationCookie carries the third-party login continuation status:
	// "continue" (local registration pending) or "success" (linkage done).
	ContinuationCookie = "OAUTH_LOGIN_STATUS"
)

// entry is a stored cookie. Cookies without an expiry are session cookies and
// are not persisted, matching browser behavior.
type entry struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Expires  time.Time `json:"expires,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

func (e *entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !e.Expires.After(now)
}

// Jar is an http.CookieJar for a single API origin. It is safe for concurrent
// use and writes through to its Store on every change.
type Jar struct {
	mu      sync.Mutex
	host    string
	entries map[string]*entry
	store   Store

	now func() time.Time
}

var _ http.CookieJar = (*Jar)(nil)

// NewJar creates a jar for the given origin, loading any persisted cookies.
func NewJar(origin string, store Store) (*Jar, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}

	j := &Jar{
		host:    u.Host,
		entries: make(map[string]*entry),
		store:   store,
		now:     time.Now,
	}

	if store != nil {
		data, err := store.Load()
		if err == nil && len(data) > 0 {
			var persisted []*entry
			if json.Unmarshal(data, &persisted) == nil {
				for _, e := range persisted {
					if !e.expired(j.now()) {
						j.entries[e.Name] = e
					}
				}
			}
		}
	}

	return j, nil
}

// SetCookies implements http.CookieJar for the jar's origin. Cookies for other
// hosts are dropped.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if u == nil || u.Host != j.host {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}

		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}

		// MaxAge < 0 or a past expiry is a deletion.
		if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now)) || c.Value == "" {
			delete(j.entries, c.Name)
			continue
		}

		j.entries[c.Name] = &entry{
			Name:     c.Name,
			Value:    c.Value,
			Expires:  expires,
			HTTPOnly: c.HttpOnly,
		}
	}

	j.persistLocked()
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	if u == nil || u.Host != j.host {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	var out []*http.Cookie
	for _, e := range j.entries {
		if e.expired(now) {
			continue
		}
		out = append(out, &http.Cookie{Name: e.Name, Value: e.Value})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// RefreshPlausible reports whether the non-sensitive marker cookie suggests a
// refresh credential may exist server-side.
func (j *Jar) RefreshPlausible() bool {
	return j.value(MarkerCookie) != ""
}

// ContinuationStatus returns the raw continuation cookie value ("" if absent).
func (j *Jar) ContinuationStatus() string {
	return j.value(ContinuationCookie)
}

func (j *Jar) value(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	e, ok := j.entries[name]
	if !ok || e.expired(j.now()) {
		return ""
	}
	return e.Value
}

// Clear drops every cookie and removes the persisted snapshot (logout).
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = make(map[string]*entry)
	if j.store == nil {
		return nil
	}
	return j.store.Delete()
}

// Reload replaces in-memory state with the persisted snapshot. Used when a
// watcher reports that another process changed the jar.
func (j *Jar) Reload() error {
	if j.store == nil {
		return nil
	}
	data, err := j.store.Load()
	if err != nil {
		return err
	}

	var persisted []*entry
	if err := json.Unmarshal(data, &persisted); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = make(map[string]*entry)
	for _, e := range persisted {
		if !e.expired(j.now()) {
			j.entries[e.Name] = e
		}
	}
	return nil
}

// persistLocked writes persistent cookies through to the store. Session
// cookies (no expiry) stay memory-only.
func (j *Jar) persistLocked() {
	if j.store == nil {
		return
	}

	var persisted []*entry
	for _, e := range j.entries {
		if !e.Expires.IsZero() {
			persisted = append(persisted, e)
		}
	}
	sort.Slice(persisted, func(a, b int) bool { return persisted[a].Name < persisted[b].Name })

	data, err := json.Marshal(persisted)
	if err != nil {
		return
	}
	_ = j.store.Save(data) // best-effort, like a browser flushing its cookie db
}
