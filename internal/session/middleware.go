package session

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/what-to-cook/backend/internal/logging"
)

// saveOnWrite persists the session right before the response headers go out,
// so cookie-based stores can still set their cookie.
type saveOnWrite struct {
	gin.ResponseWriter
	c     *gin.Context
	store Store
	sess  *Session
}

func (w *saveOnWrite) save() {
	if !w.sess.Dirty() {
		return
	}
	if err := w.store.Save(w.c, w.sess); err != nil {
		logging.FromContext(w.c.Request.Context()).Error("failed to save session",
			"session_id", w.sess.ID(), "error", err)
	}
}

func (w *saveOnWrite) WriteHeaderNow() {
	if !w.Written() {
		w.save()
	}
	w.ResponseWriter.WriteHeaderNow()
}

func (w *saveOnWrite) Write(data []byte) (int, error) {
	if !w.Written() {
		w.save()
	}
	return w.ResponseWriter.Write(data)
}

func (w *saveOnWrite) WriteString(s string) (int, error) {
	if !w.Written() {
		w.save()
	}
	return w.ResponseWriter.WriteString(s)
}

func (w *saveOnWrite) Flush() {
	if !w.Written() {
		w.save()
	}
	w.ResponseWriter.Flush()
}

// Middleware loads the session for every request and saves it when it changed.
func Middleware(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Load(c)
		if err != nil {
			logging.FromContext(c.Request.Context()).Warn("failed to load session, starting a new one", "error", err)
			sess = New(uuid.NewString())
		}
		c.Set(contextKey, sess)

		w := &saveOnWrite{ResponseWriter: c.Writer, c: c, store: store, sess: sess}
		c.Writer = w
		c.Next()

		// Late changes still reach server-side stores; a cookie can no longer be updated.
		if sess.Dirty() {
			if w.Written() {
				logging.FromContext(c.Request.Context()).Debug("session changed after response was written",
					"session_id", sess.ID())
			}
			w.save()
		}
	}
}
