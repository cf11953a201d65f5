package auth

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storefront/internal/model"
)

// ContextKey is where the authenticated Principal is stored in echo.Context.
const ContextKey = "principal"

// Principal is the authenticated identity attached to a request or socket connection.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

// PrincipalFrom returns the principal set by a strategy middleware, if any.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(ContextKey).(*Principal)
	return p, ok && p != nil
}

// SetPrincipal attaches p to the request context.
func SetPrincipal(c echo.Context, p *Principal) {
	c.Set(ContextKey, p)
}
