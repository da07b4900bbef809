package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps session values as a JSON document per session id.
type RedisStore struct {
	client *redis.Client
	cookie CookieOptions
}

// NewRedisStore creates a store on top of an existing client.
func NewRedisStore(client *redis.Client, cookie CookieOptions) *RedisStore {
	return &RedisStore{client: client, cookie: cookie}
}

// Load returns the session named by the request cookie, or a new one.
// An unknown or expired id starts a new session.
func (s *RedisStore) Load(c *gin.Context) (*Session, error) {
	id, err := c.Cookie(s.cookie.Name)
	if err != nil || id == "" {
		return New(uuid.NewString()), nil
	}
	sess := &Session{id: id}
	if err := s.Refresh(c.Request.Context(), sess); err != nil {
		if errors.Is(err, ErrNotFound) {
			return New(uuid.NewString()), nil
		}
		return nil, err
	}
	return sess, nil
}

// Refresh re-reads the stored values of sess.
func (s *RedisStore) Refresh(ctx context.Context, sess *Session) error {
	data, err := s.client.Get(ctx, redisKeyPrefix+sess.ID()).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var values map[string]interface{}
	if err := dec.Decode(&values); err != nil {
		// unreadable payload is treated as an empty session
		values = nil
	}
	sess.Replace(values)
	return nil
}

// Save writes the session values with the cookie max age as TTL.
func (s *RedisStore) Save(c *gin.Context, sess *Session) error {
	data, err := json.Marshal(sess.Values())
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(c.Request.Context(), redisKeyPrefix+sess.ID(), data, s.cookie.MaxAge).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if sess.IsNew() {
		http.SetCookie(c.Writer, s.cookie.cookie(sess.ID()))
	}
	sess.markSaved()
	return nil
}
