// Package request carries the per-request state the key bits observe:
// negotiated language and renderer format, the authenticated principal and
// the memo store used by key constructors.
package request

import (
	"context"
	"net/http"
	"sync"
)

// Anonymous is the user identity of unauthenticated requests.
const Anonymous = "anonymous"

type ctxKey struct{}

// State is attached to every request dispatched by the router.
type State struct {
	Language string
	Format   string

	mu            sync.Mutex
	userID        string
	authenticated bool
	memo          map[string]string
}

// NewState returns an empty state.
func NewState(language, format string) *State {
	return &State{Language: language, Format: format}
}

// FromContext returns the state installed by Middleware, or nil.
func FromContext(ctx context.Context) *State {
	s, _ := ctx.Value(ctxKey{}).(*State)
	return s
}

// WithState returns a shallow copy of r carrying s.
func WithState(r *http.Request, s *State) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, s))
}

// SetUser marks the request as made by an authenticated principal.
// It is a no-op when no state is installed.
func SetUser(r *http.Request, id string) {
	if s := FromContext(r.Context()); s != nil {
		s.mu.Lock()
		s.userID = id
		s.authenticated = true
		s.mu.Unlock()
	}
}

// User returns the principal id and whether it is authenticated.
func (s *State) User() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.authenticated
}

// Memoized returns the value stored under key for this request.
func (s *State) Memoized(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.memo[key]
	return v, ok
}

// Memoize stores value under key for the lifetime of this request.
func (s *State) Memoize(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memo == nil {
		s.memo = make(map[string]string)
	}
	s.memo[key] = value
}
