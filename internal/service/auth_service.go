package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const bcryptCost = 10

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginResult carries both credentials issued by a successful login.
type LoginResult struct {
	User           *model.User
	Principal      auth.Principal
	Session        string // signed session cookie value
	Token          string
	TokenExpiresAt time.Time
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, session, token string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	sessions   *auth.SessionStore
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, sessions *auth.SessionStore, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		sessions:   sessions,
		tokenStore: tokenStore,
	}
}

// Register creates a new user with hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("email %s: %w", email, apperrors.ErrConflict)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a session and a signed token together.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	principal := auth.Principal{ID: user.ID, Email: user.Email, Role: user.Role}

	token, _, expiresAt, err := s.jwtService.GenerateToken(principal)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	session, err := s.sessions.Create(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %v", apperrors.ErrPersistence, err)
	}

	return &LoginResult{
		User:           user,
		Principal:      principal,
		Session:        session,
		Token:          token,
		TokenExpiresAt: expiresAt,
	}, nil
}

// Logout destroys the session and revokes the token. Either may be empty.
func (s *authService) Logout(ctx context.Context, session, token string) error {
	if session != "" {
		if err := s.sessions.Destroy(ctx, session); err != nil {
			return fmt.Errorf("%w: destroy session: %v", apperrors.ErrPersistence, err)
		}
	}
	if token == "" {
		return nil
	}

	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		// Expired or forged tokens are already unusable.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokenStore.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%w: revoke token: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
