package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type memoryEntry struct {
	values    map[string]interface{}
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. The cookie carries only the id.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	cookie  CookieOptions
	now     func() time.Time
}

// NewMemoryStore creates an in-process store.
func NewMemoryStore(cookie CookieOptions) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		cookie:  cookie,
		now:     time.Now,
	}
}

// Load returns the session named by the request cookie, or a new one.
func (s *MemoryStore) Load(c *gin.Context) (*Session, error) {
	if id, err := c.Cookie(s.cookie.Name); err == nil && id != "" {
		if values, ok := s.get(id); ok {
			sess := &Session{id: id}
			sess.Replace(values)
			return sess, nil
		}
	}
	return New(uuid.NewString()), nil
}

// Refresh re-reads the stored values of sess.
func (s *MemoryStore) Refresh(_ context.Context, sess *Session) error {
	values, ok := s.get(sess.ID())
	if !ok {
		return ErrNotFound
	}
	sess.Replace(values)
	return nil
}

// Save stores a copy of the session values and sets the id cookie for new sessions.
func (s *MemoryStore) Save(c *gin.Context, sess *Session) error {
	s.mu.Lock()
	s.entries[sess.ID()] = memoryEntry{
		values:    sess.Values(),
		expiresAt: s.now().Add(s.cookie.MaxAge),
	}
	s.mu.Unlock()

	if sess.IsNew() {
		http.SetCookie(c.Writer, s.cookie.cookie(sess.ID()))
	}
	sess.markSaved()
	return nil
}

func (s *MemoryStore) get(id string) (map[string]interface{}, bool) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.cookie.MaxAge > 0 && !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, false
	}
	values := make(map[string]interface{}, len(entry.values))
	for k, v := range entry.values {
		values[k] = v
	}
	return values, true
}
