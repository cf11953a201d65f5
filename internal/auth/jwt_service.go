package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "storefront/internal/errors"
)

// DefaultTokenExpiry is used when JWTService is built with a non-positive ttl.
const DefaultTokenExpiry = time.Hour

// Claims represents JWT claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenExpiry
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is the lifetime of issued tokens.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken signs an access token for p. The token id (jti) is returned so it can
// be revoked on logout.
func (s *JWTService) GenerateToken(p Principal) (token string, tokenID string, expiresAt time.Time, err error) {
	now := s.now()
	tokenID = uuid.NewString()
	expiresAt = now.Add(s.ttl)
	claims := &Claims{
		UserID: p.ID.String(),
		Email:  p.Email,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   p.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, tokenID, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the claims. Failures are reported as
// ErrTokenExpired or ErrInvalidToken.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parser := jwt.Parser{}
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// Principal converts verified claims into the request identity.
func (c *Claims) Principal() (*Principal, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", apperrors.ErrInvalidToken)
	}
	return &Principal{ID: id, Email: c.Email, Role: c.Role}, nil
}
