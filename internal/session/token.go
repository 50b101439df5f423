// Package session implements the client-side authentication session manager:
// an in-memory token store, an observable session state, a single-flight
// refresh coordinator, and the bootstrap gate that runs before protected
// routes. The refresh credential itself never passes through this package; it
// lives in the cookie jar and rides along on the refresh call.
package session

import "sync"

// TokenStore holds the current access token for the life of this process.
// It performs no I/O and is never persisted; a new process starts empty and
// re-authenticates through the refresh credential, like a fresh browser tab.
type TokenStore interface {
	Get() string
	Set(token string)
	Clear()
}

// MemoryTokenStore is the canonical TokenStore.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore creates an empty token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
