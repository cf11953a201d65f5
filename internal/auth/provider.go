package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "storefront/internal/errors"
)

// Kind names a verification strategy.
type Kind string

const (
	// KindSession validates a server-side session referenced by the sid cookie.
	KindSession Kind = "session"
	// KindToken validates a signed bearer token from the Authorization header or token cookie.
	KindToken Kind = "token"
)

// Mode selects how a failed gate answers.
type Mode int

const (
	// ModeAPI answers 401 with a JSON error envelope.
	ModeAPI Mode = iota
	// ModePage answers 401 with the login view.
	ModePage
)

const verifyErrKey = "auth_verify_error"

// Strategy decides whether a request carries an authenticated principal.
type Strategy interface {
	Authenticate(c echo.Context) (*Principal, error)
}

// SessionStrategy authenticates through the session cookie.
type SessionStrategy struct {
	sessions *SessionStore
}

// Authenticate implements Strategy.
func (s *SessionStrategy) Authenticate(c echo.Context) (*Principal, error) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.sessions.Lookup(c.Request().Context(), cookie.Value)
}

// TokenStrategy authenticates stateless bearer tokens.
type TokenStrategy struct {
	jwt    *JWTService
	tokens TokenStoreInterface
	log    *logrus.Logger
}

// Authenticate implements Strategy.
func (s *TokenStrategy) Authenticate(c echo.Context) (*Principal, error) {
	raw := BearerToken(c.Request())
	if raw == "" {
		if cookie, err := c.Cookie(TokenCookie); err == nil {
			raw = cookie.Value
		}
	}
	if raw == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.Verify(c.Request().Context(), raw)
}

// Verify checks signature, expiry and revocation of raw.
func (s *TokenStrategy) Verify(ctx context.Context, raw string) (*Principal, error) {
	claims, err := s.jwt.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.tokens.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		// Fail open: an unreachable revocation list must not lock every user out.
		s.log.WithError(err).Warn("token revocation check failed")
	}
	if revoked {
		return nil, apperrors.ErrInvalidToken
	}
	return claims.Principal()
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Provider exposes the registered strategies behind one Authenticate(kind) capability.
type Provider struct {
	strategies map[Kind]Strategy
	token      *TokenStrategy
	log        *logrus.Logger
}

// NewProvider registers the session and token strategies.
func NewProvider(sessions *SessionStore, jwtService *JWTService, tokens TokenStoreInterface, log *logrus.Logger) *Provider {
	token := &TokenStrategy{jwt: jwtService, tokens: tokens, log: log}
	return &Provider{
		strategies: map[Kind]Strategy{
			KindSession: &SessionStrategy{sessions: sessions},
			KindToken:   token,
		},
		token: token,
		log:   log,
	}
}

// Authenticate runs the named strategy against the request.
func (p *Provider) Authenticate(kind Kind, c echo.Context) (*Principal, error) {
	s, ok := p.strategies[kind]
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.Authenticate(c)
}

// Resolve tries each strategy in order and returns the first principal found.
func (p *Provider) Resolve(c echo.Context, kinds ...Kind) (*Principal, error) {
	lastErr := apperrors.ErrUnauthenticated
	for _, kind := range kinds {
		principal, err := p.Authenticate(kind, c)
		if err == nil {
			return principal, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Require gates the following handlers on the named strategy. On success the principal
// is stored under ContextKey; on failure the chain stops with a 401.
func (p *Provider) Require(kind Kind, mode Mode) echo.MiddlewareFunc {
	if kind == KindToken {
		return echojwt.WithConfig(echojwt.Config{
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + TokenCookie,
			ContextKey:  ContextKey,
			ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
				principal, err := p.token.Verify(c.Request().Context(), raw)
				if err != nil {
					c.Set(verifyErrKey, err)
					return nil, err
				}
				return principal, nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				if verr, ok := c.Get(verifyErrKey).(error); ok {
					err = verr
				} else {
					err = apperrors.ErrUnauthenticated
				}
				return p.deny(c, mode, err)
			},
		})
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := p.Authenticate(kind, c)
			if err != nil {
				return p.deny(c, mode, err)
			}
			SetPrincipal(c, principal)
			return next(c)
		}
	}
}

func (p *Provider) deny(c echo.Context, mode Mode, err error) error {
	if !isAuthError(err) {
		err = apperrors.ErrUnauthenticated
	}
	msg := apperrors.MapErrorToHTTP(err).Message
	p.log.WithFields(logrus.Fields{
		"path":   c.Request().URL.Path,
		"reason": msg,
	}).Debug("authentication failed")

	if mode == ModePage {
		return c.Render(http.StatusUnauthorized, "login", echo.Map{"Title": "Login", "Error": msg})
	}
	return c.JSON(http.StatusUnauthorized, apperrors.Failure(msg))
}

func isAuthError(err error) bool {
	return errors.Is(err, apperrors.ErrUnauthenticated) ||
		errors.Is(err, apperrors.ErrInvalidToken) ||
		errors.Is(err, apperrors.ErrTokenExpired)
}
