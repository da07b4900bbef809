package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Session keys holding the request quota
const (
	RequestsCountKey     = "api_requests_count"
	RequestsResetTimeKey = "api_requests_reset_time"
)

// SessionBag is the per-session key/value storage the counter reads and writes.
type SessionBag interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
}

// RequestCounter tracks how many quota-charged requests a session made in the
// current window. Values that cannot be read back are treated as a fresh counter.
type RequestCounter struct {
	bag    SessionBag
	window time.Duration
	now    func() time.Time
}

// NewRequestCounter creates a counter over bag and initializes it when empty.
// A nil now defaults to time.Now.
func NewRequestCounter(bag SessionBag, window time.Duration, now func() time.Time) *RequestCounter {
	if now == nil {
		now = time.Now
	}
	rc := &RequestCounter{bag: bag, window: window, now: now}
	rc.EnsureInitialized()
	return rc
}

// EnsureInitialized sets count to 0 and opens a window when no usable count is stored.
func (rc *RequestCounter) EnsureInitialized() {
	if _, ok := rc.storedCount(); ok {
		return
	}
	rc.reset()
}

// CurrentCount returns the stored count, or 0 when absent or malformed.
func (rc *RequestCounter) CurrentCount() int {
	n, _ := rc.storedCount()
	return n
}

// Remaining returns how many requests are left out of max, never below 0.
func (rc *RequestCounter) Remaining(max int) int {
	if left := max - rc.CurrentCount(); left > 0 {
		return left
	}
	return 0
}

// LimitExceeded reports whether the session has used up max requests.
func (rc *RequestCounter) LimitExceeded(max int) bool {
	return rc.CurrentCount() >= max
}

// Increment adds one to the count and returns the new value.
func (rc *RequestCounter) Increment() int {
	n := rc.CurrentCount() + 1
	rc.bag.Set(RequestsCountKey, n)
	return n
}

// ResetIfExpired starts a new window when the current one has elapsed or its
// expiry is unknown. It reports whether a reset happened.
func (rc *RequestCounter) ResetIfExpired() bool {
	resetAt, ok := rc.ResetAt()
	if ok && rc.now().Before(resetAt) {
		return false
	}
	rc.reset()
	return true
}

// ResetAt returns when the current window expires.
func (rc *RequestCounter) ResetAt() (time.Time, bool) {
	v, ok := rc.bag.Get(RequestsResetTimeKey)
	if !ok {
		return time.Time{}, false
	}
	ts, ok := coerceInt(v)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(ts, 0), true
}

// ResetInMinutes returns the minutes until the window expires, rounded up and
// floored at 0.
func (rc *RequestCounter) ResetInMinutes() int {
	resetAt, ok := rc.ResetAt()
	if !ok {
		return 0
	}
	d := resetAt.Sub(rc.now())
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}

func (rc *RequestCounter) reset() {
	rc.bag.Set(RequestsCountKey, 0)
	rc.bag.Set(RequestsResetTimeKey, rc.now().Add(rc.window).Unix())
}

func (rc *RequestCounter) storedCount() (int, bool) {
	v, ok := rc.bag.Get(RequestsCountKey)
	if !ok {
		return 0, false
	}
	n, ok := coerceInt(v)
	if !ok || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// coerceInt reads a non-negative integer that may have been round-tripped
// through JSON, Redis or a cookie.
func coerceInt(v interface{}) (int64, bool) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) || math.Abs(t) > 1<<53 {
			return 0, false
		}
		n = int64(t)
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n < 0 {
		return 0, false
	}
	return n, true
}
