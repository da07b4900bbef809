package session

import (
	"net/http"
	"time"
)

// CookieOptions configures the cookie that identifies a session.
type CookieOptions struct {
	Name     string
	Path     string
	MaxAge   time.Duration
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieOptions returns lax, HTTP-only cookie settings for name.
func DefaultCookieOptions(name string, maxAge time.Duration) CookieOptions {
	return CookieOptions{
		Name:     name,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	path := o.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     path,
		MaxAge:   int(o.MaxAge.Seconds()),
		Secure:   o.Secure,
		HttpOnly: true,
		SameSite: o.SameSite,
	}
}
