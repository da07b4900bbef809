package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/what-to-cook/backend/internal/logging"
)

// Response is a handler result captured before it reaches the client.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// responseRecorder buffers status and body written by downstream handlers.
// Headers go straight to the wrapped writer's header map.
type responseRecorder struct {
	gin.ResponseWriter
	status  int
	body    bytes.Buffer
	written bool
}

func newResponseRecorder(w gin.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(code int) {
	if code > 0 && !r.written {
		r.status = code
	}
}

func (r *responseRecorder) WriteHeaderNow() {
	r.written = true
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.written = true
	return r.body.Write(b)
}

func (r *responseRecorder) WriteString(s string) (int, error) {
	r.written = true
	return r.body.WriteString(s)
}

func (r *responseRecorder) Status() int {
	return r.status
}

func (r *responseRecorder) Size() int {
	if !r.written {
		return -1
	}
	return r.body.Len()
}

func (r *responseRecorder) Written() bool {
	return r.written
}

// Flush is a no-op until the recorded response is replayed.
func (r *responseRecorder) Flush() {}

// Response returns the captured result.
func (r *responseRecorder) Response() *Response {
	return &Response{
		Status: r.status,
		Header: r.Header(),
		Body:   r.body.Bytes(),
	}
}

// writeResponse replays resp onto w.
func writeResponse(ctx context.Context, w gin.ResponseWriter, resp *Response) {
	w.WriteHeader(resp.Status)
	if len(resp.Body) == 0 {
		w.WriteHeaderNow()
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		logging.FromContext(ctx).Debug("failed to write response", "status", resp.Status, "error", err)
	}
}
