// Package session provides per-browser session state for gin handlers,
// backed by a signed cookie, Redis or process memory.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
)

const contextKey = "session"

// ErrNotFound is returned by a Store that has no data for a session id.
var ErrNotFound = errors.New("session not found")

// Session is a key/value bag bound to one browser. It is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	id     string
	values map[string]interface{}
	dirty  bool
	isNew  bool
}

// New returns an empty session with the given id.
func New(id string) *Session {
	return &Session{id: id, values: map[string]interface{}{}, isNew: true}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// IsNew reports whether the session was created during this request.
func (s *Session) IsNew() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isNew
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and marks the session for saving.
func (s *Session) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.dirty = true
}

// Delete removes key.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Dirty reports whether the session changed since it was loaded or saved.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Values returns a copy of the stored values.
func (s *Session) Values() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Replace swaps in values freshly loaded from a store.
func (s *Session) Replace(values map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if values == nil {
		values = map[string]interface{}{}
	}
	s.values = values
	s.dirty = false
}

func (s *Session) markSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
	s.isNew = false
}

// Store loads and saves session values.
type Store interface {
	// Load returns the session carried by the request, or a new one.
	Load(c *gin.Context) (*Session, error)
	// Refresh re-reads the values of sess from the backing storage.
	Refresh(ctx context.Context, sess *Session) error
	// Save persists sess and writes whatever the client needs to find it again.
	Save(c *gin.Context, sess *Session) error
}

// FromContext returns the session attached by Middleware, if any.
func FromContext(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	return sess, ok
}
