// Package handler maps HTTP routes onto the service layer. API routes answer with JSON
// envelopes; page routes render views.
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
)

// ProductPublisher pushes the current catalog to live clients after a mutation.
type ProductPublisher interface {
	PublishProducts(ctx context.Context) error
}

// wantsJSON reports whether the caller expects an envelope rather than a page.
func wantsJSON(c echo.Context) bool {
	r := c.Request()
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return true
	}
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func currentPrincipal(c echo.Context) (*auth.Principal, error) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return p, nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(name, "uuid")
	}
	return id, nil
}

// bindAndValidate binds the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewValidationError("body", "invalid request body")
	}
	return c.Validate(req)
}

func success(c echo.Context, status int, payload interface{}) error {
	return c.JSON(status, apperrors.Success(payload))
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusSeeOther, to)
}
