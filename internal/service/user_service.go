package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// UserService exposes account operations for an authenticated user.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error
	PromoteByEmail(ctx context.Context, email string) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService backed by repo.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

// ChangePassword replaces the password after checking the current one.
func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperrors.NewValidationError("current_password", "mismatch")
	}
	if current == next {
		return apperrors.NewValidationError("new_password", "nefield=current_password")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hashed))
}

// PromoteByEmail grants the admin role.
func (s *userService) PromoteByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleAdmin {
		return user, nil
	}
	if err := s.repo.UpdateRole(ctx, user.ID, model.RoleAdmin); err != nil {
		return nil, err
	}
	user.Role = model.RoleAdmin
	return user, nil
}
