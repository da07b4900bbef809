package session

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const cookieKeyInfo = "what-to-cook session cookie v1"

type cookieClaims struct {
	Data map[string]interface{} `json:"data"`
	jwt.RegisteredClaims
}

// CookieStore keeps the whole session in an HS256-signed cookie.
type CookieStore struct {
	key    []byte
	cookie CookieOptions
	now    func() time.Time
}

// NewCookieStore derives a signing key from secret and returns the store.
func NewCookieStore(secret string, cookie CookieOptions) (*CookieStore, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(cookieKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	return &CookieStore{key: key, cookie: cookie, now: time.Now}, nil
}

// Load decodes the session cookie. A missing, tampered or expired cookie starts a new session.
func (s *CookieStore) Load(c *gin.Context) (*Session, error) {
	raw, err := c.Cookie(s.cookie.Name)
	if err != nil || raw == "" {
		return New(uuid.NewString()), nil
	}

	claims := &cookieClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return New(uuid.NewString()), nil
	}

	sess := &Session{id: claims.ID}
	sess.Replace(claims.Data)
	return sess, nil
}

// Refresh is a no-op: the client holds the only copy.
func (s *CookieStore) Refresh(context.Context, *Session) error {
	return nil
}

// Save signs the session values into the cookie.
func (s *CookieStore) Save(c *gin.Context, sess *Session) error {
	now := s.now()
	claims := cookieClaims{
		Data: sess.Values(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sess.ID(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.cookie.MaxAge > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.cookie.MaxAge))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return fmt.Errorf("failed to sign session cookie: %w", err)
	}
	http.SetCookie(c.Writer, s.cookie.cookie(signed))
	sess.markSaved()
	return nil
}
