package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"storefront/internal/auth"
	"storefront/internal/config"
	apperrors "storefront/internal/errors"
	"storefront/internal/handler"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/realtime"
	"storefront/internal/view"
)

// Handlers groups the route handlers wired by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Products *handler.ProductHandler
	Carts    *handler.CartHandler
	Chat     *handler.ChatHandler
}

// Register wires middleware and routes.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *logrus.Logger,
	provider *auth.Provider,
	hub *realtime.Hub,
	m *metrics.Metrics,
	h Handlers,
) {
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Validator = &CustomValidator{validator: apperrors.NewValidator()}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(m.Middleware())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.StaticFS("/static", view.Static())

	tokenAPI := provider.Require(auth.KindToken, auth.ModeAPI)
	tokenPage := provider.Require(auth.KindToken, auth.ModePage)
	sessionPage := provider.Require(auth.KindSession, auth.ModePage)
	limited := authRateLimiter(cfg.AuthRateLimit)

	// Public
	e.GET("/", h.Auth.LoginView)
	e.GET("/register", h.Auth.RegisterView)
	e.POST("/register", h.Auth.Register, limited)
	e.POST("/login", h.Auth.Login, limited)
	e.GET("/logout", h.Auth.Logout)
	e.POST("/logout", h.Auth.Logout)

	e.GET("/profile", h.Users.Profile, sessionPage)

	// Pages
	e.GET("/products", h.Products.ListView, tokenPage)
	e.POST("/products", h.Products.CreateForm, tokenPage)
	e.GET("/products/:id", h.Products.DetailView, tokenPage)
	e.GET("/carts", h.Carts.View, tokenPage)
	e.POST("/carts", h.Carts.EnsureForm, tokenPage)
	e.GET("/realtimeproducts", h.Products.RealtimeView, tokenPage)
	e.GET("/chat", h.Chat.View, tokenPage)

	e.GET("/ws", hub.ServeWS, tokenAPI)

	api := e.Group("/api")
	api.GET("/sessions/current", h.Auth.Current)

	secured := api.Group("", tokenAPI)
	secured.GET("/users/me", h.Users.Me)
	secured.PUT("/users/me/password", h.Users.ChangePassword)

	secured.GET("/products", h.Products.List)
	secured.POST("/products", h.Products.Create)
	secured.GET("/products/:id", h.Products.Get)
	secured.PUT("/products/:id", h.Products.Update)
	secured.DELETE("/products/:id", h.Products.Delete)

	secured.GET("/carts", h.Carts.Mine)
	secured.POST("/carts", h.Carts.Ensure)
	secured.GET("/carts/:id", h.Carts.Get)
	secured.PUT("/carts/:id", h.Carts.Replace)
	secured.DELETE("/carts/:id", h.Carts.Clear)
	secured.POST("/carts/:id/product/:pid", h.Carts.AddProduct)
	secured.PUT("/carts/:id/product/:pid", h.Carts.SetQuantity)
	secured.DELETE("/carts/:id/product/:pid", h.Carts.RemoveProduct)
}

// authRateLimiter limits login and register attempts per client IP.
func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator and reports failures as field-level errors.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return apperrors.FromValidator(err)
	}
	return nil
}
