package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// SessionCookie carries the signed session id.
	SessionCookie = "sid"
	// TokenCookie carries the bearer token for browser requests and socket upgrades.
	TokenCookie = "token"
)

// SetAuthCookies writes the session and token cookies issued at login.
func SetAuthCookies(c echo.Context, sessionValue string, sessionTTL time.Duration, token string, tokenTTL time.Duration, secure bool) {
	c.SetCookie(newCookie(SessionCookie, sessionValue, sessionTTL, secure))
	c.SetCookie(newCookie(TokenCookie, token, tokenTTL, secure))
}

// ClearAuthCookies expires both auth cookies.
func ClearAuthCookies(c echo.Context, secure bool) {
	for _, name := range []string{SessionCookie, TokenCookie} {
		ck := newCookie(name, "", 0, secure)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func newCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
