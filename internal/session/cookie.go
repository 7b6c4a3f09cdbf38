package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the signed session id
const CookieName = "sid"

// ErrInvalidCookie is returned for cookies that fail signature or expiry checks
var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieCodec signs session ids into HS256 tokens so a client cannot pick
// or alter its session id.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewCookieCodec creates a codec. secure marks cookies HTTPS-only.
func NewCookieCodec(secret string, ttl time.Duration, secure bool) *CookieCodec {
	return &CookieCodec{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Encode returns a signed token for id
func (c *CookieCodec) Encode(id string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:  id,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies a token and returns the session id it carries
func (c *CookieCodec) Decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidCookie
	}
	if claims.Subject == "" {
		return "", ErrInvalidCookie
	}
	return claims.Subject, nil
}

// Cookie builds the HttpOnly cookie for id
func (c *CookieCodec) Cookie(id string) (*http.Cookie, error) {
	value, err := c.Encode(id)
	if err != nil {
		return nil, err
	}
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.ttl > 0 {
		cookie.MaxAge = int(c.ttl.Seconds())
	}
	return cookie, nil
}
