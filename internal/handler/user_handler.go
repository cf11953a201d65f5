package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

// UserHandler serves the caller's own account.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a user handler.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ChangePasswordRequest represents a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=5,max=72"`
}

// Profile renders the session holder's profile page.
func (h *UserHandler) Profile(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "profile", echo.Map{"Title": "Profile", "User": user})
}

// Me godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope{payload=model.User}
// @Failure 401 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user)
}

// ChangePassword godoc
// @Summary Change the authenticated user's password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} errors.Envelope
// @Failure 400 {object} errors.Envelope
// @Failure 401 {object} errors.Envelope
// @Router /api/users/me/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.ChangePassword(c.Request().Context(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"message": "password updated"})
}
