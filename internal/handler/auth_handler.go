package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/service"
)

// CookieConfig controls the cookies written at login.
type CookieConfig struct {
	Secure     bool
	SessionTTL time.Duration
	TokenTTL   time.Duration
}

// AuthHandler handles registration, login and logout for both pages and API clients.
type AuthHandler struct {
	authService service.AuthService
	provider    *auth.Provider
	cookies     CookieConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, provider *auth.Provider, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, provider: provider, cookies: cookies}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required,min=5,max=72"`
	FirstName string `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse is returned to API clients on login.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *auth.Principal `json:"user"`
}

// LoginView renders the login page, or sends a signed-in visitor to the catalog.
func (h *AuthHandler) LoginView(c echo.Context) error {
	if _, err := h.provider.Resolve(c, auth.KindSession); err == nil {
		return c.Redirect(http.StatusFound, "/products")
	}
	return c.Render(http.StatusOK, "login", echo.Map{"Title": "Login"})
}

// RegisterView renders the registration page.
func (h *AuthHandler) RegisterView(c echo.Context) error {
	return c.Render(http.StatusOK, "register", echo.Map{"Title": "Register"})
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} errors.Envelope{payload=model.User}
// @Failure 400 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Failure 429 {object} errors.Envelope
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return h.reject(c, "register", err)
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return h.reject(c, "register", err)
	}

	if wantsJSON(c) {
		return success(c, http.StatusCreated, user)
	}
	return redirect(c, "/")
}

// Login godoc
// @Summary Log in; sets the session and token cookies and returns the token
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} errors.Envelope{payload=LoginResponse}
// @Failure 400 {object} errors.Envelope
// @Failure 401 {object} errors.Envelope
// @Failure 429 {object} errors.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return h.reject(c, "login", err)
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.reject(c, "login", err)
	}

	auth.SetAuthCookies(c, res.Session, h.cookies.SessionTTL, res.Token, h.cookies.TokenTTL, h.cookies.Secure)

	if wantsJSON(c) {
		principal := res.Principal
		return success(c, http.StatusOK, LoginResponse{
			Token:     res.Token,
			ExpiresAt: res.TokenExpiresAt,
			User:      &principal,
		})
	}
	return redirect(c, "/products")
}

// Logout godoc
// @Summary Log out; destroys the session and revokes the token
// @Tags auth
// @Produce json
// @Success 200 {object} errors.Envelope
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var session, token string
	if ck, err := c.Cookie(auth.SessionCookie); err == nil {
		session = ck.Value
	}
	if ck, err := c.Cookie(auth.TokenCookie); err == nil {
		token = ck.Value
	}
	if bearer := auth.BearerToken(c.Request()); bearer != "" {
		token = bearer
	}

	err := h.authService.Logout(c.Request().Context(), session, token)
	auth.ClearAuthCookies(c, h.cookies.Secure)
	if err != nil {
		return err
	}

	if wantsJSON(c) {
		return success(c, http.StatusOK, echo.Map{"message": "logged out"})
	}
	return redirect(c, "/")
}

// Current godoc
// @Summary Current principal, from the token or the session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope{payload=auth.Principal}
// @Failure 401 {object} errors.Envelope
// @Router /api/sessions/current [get]
func (h *AuthHandler) Current(c echo.Context) error {
	p, err := h.provider.Resolve(c, auth.KindToken, auth.KindSession)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, p)
}

// reject answers API callers through the error handler and re-renders the form for pages.
func (h *AuthHandler) reject(c echo.Context, view string, err error) error {
	var he *echo.HTTPError
	if wantsJSON(c) || errors.As(err, &he) {
		return err
	}
	mapped := apperrors.MapErrorToHTTP(err)
	title := "Login"
	if view == "register" {
		title = "Register"
	}
	return c.Render(mapped.StatusCode, view, echo.Map{"Title": title, "Error": mapped.Message})
}
