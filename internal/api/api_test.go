package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pageza/what-to-cook/backend/internal/middleware"
	"github.com/pageza/what-to-cook/backend/internal/mocks"
	"github.com/pageza/what-to-cook/backend/internal/session"
)

type apiFixture struct {
	router  *gin.Engine
	backend *mocks.MockRecipeBackend
	reader  *mocks.MockRecipeReader
	now     time.Time
	cookies []*http.Cookie
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &apiFixture{
		backend: &mocks.MockRecipeBackend{},
		reader:  &mocks.MockRecipeReader{},
		now:     time.Unix(1_700_000_000, 0),
	}
	store := session.NewMemoryStore(session.DefaultCookieOptions("_test_session", 24*time.Hour))
	limiter := middleware.NewRateLimiter(store, middleware.RateLimitConfig{
		MaxRequests: 5,
		Window:      time.Hour,
		Now:         func() time.Time { return f.now },
	})

	r := gin.New()
	r.Use(middleware.Recovery(), session.Middleware(store), limiter.RateLimitMiddleware())
	SetupAPI(r, f.backend, f.reader, limiter)
	r.GET("/health", HealthCheck)
	f.router = r

	t.Cleanup(func() {
		f.backend.AssertExpectations(t)
		f.reader.AssertExpectations(t)
	})
	return f
}

// do sends a request carrying the session cookie from earlier responses.
func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, ck := range f.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		f.cookies = set
	}
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
