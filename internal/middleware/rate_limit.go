package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/what-to-cook/backend/internal/logging"
	"github.com/pageza/what-to-cook/backend/internal/metrics"
	"github.com/pageza/what-to-cook/backend/internal/service"
	"github.com/pageza/what-to-cook/backend/internal/session"
)

const quotaContextKey = "quota"

// Rate limit messages
const (
	RateLimitExceededMessage = "Rate limit exceeded. Please try again later."
	LimitReachedMessage      = "You have reached the maximum number of recipe requests for now."
)

// RateLimitConfig defines configuration for the session request quota
type RateLimitConfig struct {
	// MaxRequests is the number of successful requests allowed per window
	MaxRequests int
	// Window is how long a quota window lasts
	Window time.Duration
	// Match selects the requests charged against the quota
	Match func(*http.Request) bool
	// Now is the clock, time.Now when nil
	Now func() time.Time
}

// DefaultRateLimitConfig returns 5 requests per hour on JSON API POSTs.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 5,
		Window:      time.Hour,
		Match:       IsQuotaRequest,
		Now:         time.Now,
	}
}

// IsQuotaRequest matches POST requests under /api/ that accept JSON.
func IsQuotaRequest(r *http.Request) bool {
	return r.Method == http.MethodPost &&
		strings.HasPrefix(r.URL.Path, "/api/") &&
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// RateLimiter enforces a per-session request quota
type RateLimiter struct {
	store  session.Store
	config RateLimitConfig
	locks  *session.KeyedMutex
}

// NewRateLimiter creates a new rate limiter over the given session store
func NewRateLimiter(store session.Store, config RateLimitConfig) *RateLimiter {
	defaults := DefaultRateLimitConfig()
	if config.MaxRequests <= 0 {
		config.MaxRequests = defaults.MaxRequests
	}
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	if config.Match == nil {
		config.Match = defaults.Match
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}
	return &RateLimiter{
		store:  store,
		config: config,
		locks:  session.NewKeyedMutex(),
	}
}

// Config returns the effective configuration
func (rl *RateLimiter) Config() RateLimitConfig {
	return rl.config
}

// RateLimitMiddleware returns a Gin middleware that enforces the session quota.
// It must run after session.Middleware.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.config.Match(c.Request) {
			c.Next()
			return
		}

		log := logging.FromContext(c.Request.Context())
		sess, ok := session.FromContext(c)
		if !ok {
			log.Error("rate limiter has no session, request not counted", "path", c.Request.URL.Path)
			c.Next()
			return
		}

		unlock := rl.locks.Lock(sess.ID())
		defer unlock()

		if err := rl.store.Refresh(c.Request.Context(), sess); err != nil && !errors.Is(err, session.ErrNotFound) {
			log.Warn("failed to refresh session, using loaded values", "session_id", sess.ID(), "error", err)
		}

		quota := rl.quota(sess)
		if quota.LimitReached() {
			metrics.QuotaDecisions.WithLabelValues("rejected").Inc()
			log.Warn("rate limit exceeded", "session_id", sess.ID(), "count", quota.counter.CurrentCount())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, quota.exceededBody())
			return
		}
		metrics.QuotaDecisions.WithLabelValues("allowed").Inc()
		log.Debug("request within quota", "session_id", sess.ID(), "remaining", quota.Remaining())

		c.Set(quotaContextKey, quota)

		orig := c.Writer
		rec := newResponseRecorder(orig)
		c.Writer = rec
		defer func() { c.Writer = orig }()

		if !next(c) {
			// the 500 goes out through the session writer while the lock is held
			c.Writer = orig
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: UnexpectedErrorMessage})
			return
		}

		c.Writer = orig
		writeResponse(c.Request.Context(), orig, rl.settle(c, quota, rec.Response()))
	}
}

// next runs the rest of the chain and reports false when a handler panicked.
func next(c *gin.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(c.Request.Context()).Error("panic recovered",
				"error", r,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)
		}
	}()
	c.Next()
	return true
}

// Peek returns the quota of the request's session without charging it.
// An expired window is rolled over.
func (rl *RateLimiter) Peek(c *gin.Context) (*Quota, error) {
	sess, ok := session.FromContext(c)
	if !ok {
		return nil, fmt.Errorf("no session on request")
	}
	unlock := rl.locks.Lock(sess.ID())
	defer unlock()

	if err := rl.store.Refresh(c.Request.Context(), sess); err != nil && !errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return rl.quota(sess), nil
}

func (rl *RateLimiter) quota(sess *session.Session) *Quota {
	counter := service.NewRequestCounter(sess, rl.config.Window, rl.config.Now)
	counter.ResetIfExpired()
	return &Quota{counter: counter, max: rl.config.MaxRequests}
}

// settle charges a successful response and marks it when the quota is now used up.
// Bookkeeping failures never change the handler's response.
func (rl *RateLimiter) settle(c *gin.Context, quota *Quota, resp *Response) (out *Response) {
	out = resp
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(c.Request.Context()).Error("rate limit bookkeeping failed", "panic", r)
			out = resp
		}
	}()

	if resp.Status != http.StatusOK && resp.Status != http.StatusCreated {
		return resp
	}
	quota.Consume()

	if quota.annotated || !quota.LimitReached() {
		return resp
	}
	return markLimitReached(c, resp)
}

// markLimitReached merges limit_reached into a JSON object body.
func markLimitReached(c *gin.Context, resp *Response) *Response {
	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	var body map[string]interface{}
	err := dec.Decode(&body)
	if err == nil && body == nil {
		err = errors.New("body is null")
	}
	if err == nil {
		if extra := dec.Decode(&struct{}{}); extra != io.EOF {
			err = errors.New("trailing data after JSON object")
		}
	}
	if err != nil {
		metrics.LimitReachedRewrites.WithLabelValues("skipped").Inc()
		logging.FromContext(c.Request.Context()).Warn("response body is not a JSON object, leaving it untouched", "error", err)
		return resp
	}

	body["limit_reached"] = true
	body["message"] = LimitReachedMessage
	body["remaining_requests"] = 0

	data, err := json.Marshal(body)
	if err != nil {
		metrics.LimitReachedRewrites.WithLabelValues("skipped").Inc()
		logging.FromContext(c.Request.Context()).Warn("failed to encode rewritten body", "error", err)
		return resp
	}
	if resp.Header.Get("Content-Length") != "" {
		resp.Header.Set("Content-Length", strconv.Itoa(len(data)))
	}
	metrics.LimitReachedRewrites.WithLabelValues("ok").Inc()
	return &Response{Status: resp.Status, Header: resp.Header, Body: data}
}

// Quota is the request's view of its session quota, available to handlers
// through QuotaFromContext.
type Quota struct {
	counter   *service.RequestCounter
	max       int
	consumed  bool
	annotated bool
}

// QuotaFromContext returns the quota attached by the rate limiter.
func QuotaFromContext(c *gin.Context) (*Quota, bool) {
	v, ok := c.Get(quotaContextKey)
	if !ok {
		return nil, false
	}
	q, ok := v.(*Quota)
	return q, ok
}

// Consume charges the current request once and returns the remaining requests.
// Later calls, including the limiter's own, do not charge again.
func (q *Quota) Consume() int {
	if !q.consumed {
		q.counter.Increment()
		q.consumed = true
		metrics.QuotaConsumed.Inc()
	}
	return q.Remaining()
}

// Consumed reports whether the current request has been charged.
func (q *Quota) Consumed() bool {
	return q.consumed
}

// Remaining returns how many requests are left in the window.
func (q *Quota) Remaining() int {
	return q.counter.Remaining(q.max)
}

// Max returns the quota ceiling.
func (q *Quota) Max() int {
	return q.max
}

// LimitReached reports whether no requests are left.
func (q *Quota) LimitReached() bool {
	return q.counter.LimitExceeded(q.max)
}

// ResetInMinutes returns the minutes until the window resets.
func (q *Quota) ResetInMinutes() int {
	return q.counter.ResetInMinutes()
}

// Annotate writes remaining_requests into body, and limit_reached with a message
// when the charged request used up the quota. The limiter leaves annotated
// responses alone.
func (q *Quota) Annotate(body gin.H) gin.H {
	body["remaining_requests"] = q.Remaining()
	if q.consumed && q.LimitReached() {
		body["limit_reached"] = true
		body["message"] = LimitReachedMessage
	}
	q.annotated = true
	return body
}

// RetryBody returns the reset_in_minutes and message fields for a 429 response.
func (q *Quota) RetryBody(body gin.H) gin.H {
	if _, ok := q.counter.ResetAt(); ok {
		minutes := q.ResetInMinutes()
		body["reset_in_minutes"] = minutes
		body["message"] = RetryMessage(minutes)
	}
	return body
}

func (q *Quota) exceededBody() gin.H {
	return q.RetryBody(gin.H{
		"error":              RateLimitExceededMessage,
		"remaining_requests": 0,
	})
}

// RetryMessage tells the user how long to wait.
func RetryMessage(minutes int) string {
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Please try again in %d %s", minutes, unit)
}
