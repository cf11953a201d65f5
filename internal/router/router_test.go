package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/config"
	apperrors "storefront/internal/errors"
	"storefront/internal/handler"
	"storefront/internal/kv"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/realtime"
	"storefront/internal/service"
	"storefront/internal/view"
)

type app struct {
	e        *echo.Echo
	products *memProducts
}

func newApp(t *testing.T, rateLimit float64) *app {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		AuthRateLimit: rateLimit,
		TokenTTL:      time.Hour,
		SessionTTL:    time.Hour,
	}

	users := &memUsers{users: map[uuid.UUID]*model.User{}}
	products := &memProducts{items: map[uuid.UUID]*model.Product{}}
	carts := &memCarts{carts: map[uuid.UUID]*model.Cart{}}
	messages := &memMessages{}

	store, err := kv.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	jwtService := auth.NewJWTService("jwt-secret", cfg.TokenTTL)
	tokens := auth.NewTokenStore(store)
	sessions := auth.NewSessionStore(store, "session-secret", cfg.SessionTTL)
	provider := auth.NewProvider(sessions, jwtService, tokens, log)

	productService := service.NewProductService(products)
	chatService := service.NewChatService(messages, nil, 10)
	m := metrics.New()
	hub := realtime.NewHub(productService, chatService, log, m)

	renderer, err := view.New()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	Register(e, cfg, log, provider, hub, m, Handlers{
		Auth: handler.NewAuthHandler(service.NewAuthService(users, jwtService, sessions, tokens), provider, handler.CookieConfig{
			SessionTTL: cfg.SessionTTL,
			TokenTTL:   cfg.TokenTTL,
		}),
		Users:    handler.NewUserHandler(service.NewUserService(users)),
		Products: handler.NewProductHandler(productService, hub, log),
		Carts:    handler.NewCartHandler(service.NewCartService(carts, products)),
		Chat:     handler.NewChatHandler(chatService),
	})
	return &app{e: e, products: products}
}

func (a *app) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body, token string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

type envelope struct {
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// signup registers and logs in email, returning the login response.
func (a *app) signup(t *testing.T, email string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"email":"` + email + `","password":"pw123","first_name":"Ada","last_name":"L"}`
	rec := a.do(jsonRequest(http.MethodPost, "/register", body, ""))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(jsonRequest(http.MethodPost, "/login", `{"email":"`+email+`","password":"pw123"}`, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec
}

func tokenOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var res handler.LoginResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Payload, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (a *app) createProduct(t *testing.T, token, code string) model.Product {
	t.Helper()
	body := `{"name":"Widget","code":"` + code + `","price":"2.50","stock":3,"category":"tools"}`
	rec := a.do(jsonRequest(http.MethodPost, "/api/products", body, token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p model.Product
	require.NoError(t, json.Unmarshal(decode(t, rec).Payload, &p))
	return p
}

func TestRegister_EmailAndPasswordOnly(t *testing.T) {
	a := newApp(t, 100)

	rec := a.do(jsonRequest(http.MethodPost, "/register", `{"email":"a@x.com","password":"pw123"}`, ""))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(jsonRequest(http.MethodPost, "/login", `{"email":"a@x.com","password":"pw123"}`, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, cookieNamed(rec, auth.SessionCookie))
	token := tokenOf(t, rec)

	rec = a.do(jsonRequest(http.MethodGet, "/api/products", "", token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decode(t, rec).Status)
}

func TestRegisterAndLogin(t *testing.T) {
	a := newApp(t, 100)
	rec := a.signup(t, "a@x.com")

	assert.NotNil(t, cookieNamed(rec, auth.SessionCookie))
	assert.NotNil(t, cookieNamed(rec, auth.TokenCookie))
	token := tokenOf(t, rec)

	rec = a.do(jsonRequest(http.MethodGet, "/api/products", "", token))
	require.Equal(t, http.StatusOK, rec.Code)
	var page service.ProductPage
	require.NoError(t, json.Unmarshal(decode(t, rec).Payload, &page))
	assert.Empty(t, page.Docs)
	assert.Equal(t, 1, page.Page)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	a := newApp(t, 100)
	a.signup(t, "a@x.com")

	rec := a.do(jsonRequest(http.MethodPost, "/register", `{"email":"A@x.com","password":"pw123","first_name":"B"}`, ""))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error", decode(t, rec).Status)
}

func TestRegister_Validation(t *testing.T) {
	a := newApp(t, 100)
	rec := a.do(jsonRequest(http.MethodPost, "/register", `{"email":"bad","password":"1","first_name":"A"}`, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "validation failed: email: email; password: min=5", env.Message)
}

func TestLogin_WrongPassword(t *testing.T) {
	a := newApp(t, 100)
	a.signup(t, "a@x.com")

	rec := a.do(jsonRequest(http.MethodPost, "/login", `{"email":"a@x.com","password":"nope"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, cookieNamed(rec, auth.TokenCookie))
}

func TestAPI_RequiresToken(t *testing.T) {
	a := newApp(t, 100)
	before := a.products.callCount()

	rec := a.do(jsonRequest(http.MethodGet, "/api/products", "", ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "unauthenticated", env.Message)
	assert.Equal(t, before, a.products.callCount())

	rec = a.do(jsonRequest(http.MethodGet, "/api/products", "", "garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.ErrInvalidToken.Error(), decode(t, rec).Message)
}

func TestPage_RendersLoginWithoutToken(t *testing.T) {
	a := newApp(t, 100)
	rec := a.do(httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "unauthenticated")
}

func TestPage_TokenCookie(t *testing.T) {
	a := newApp(t, 100)
	a.signup(t, "a@x.com")

	form := url.Values{"email": {"a@x.com"}, "password": {"pw123"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := a.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get(echo.HeaderLocation))

	token := cookieNamed(rec, auth.TokenCookie)
	require.NotNil(t, token)

	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(token)
	rec = a.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
}

func TestSessionsCurrent(t *testing.T) {
	a := newApp(t, 100)
	login := a.signup(t, "a@x.com")
	sid := cookieNamed(login, auth.SessionCookie)
	require.NotNil(t, sid)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/current", nil)
	req.AddCookie(sid)
	rec := a.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var p auth.Principal
	require.NoError(t, json.Unmarshal(decode(t, rec).Payload, &p))
	assert.Equal(t, "a@x.com", p.Email)

	rec = a.do(httptest.NewRequest(http.MethodGet, "/api/sessions/current", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	a := newApp(t, 100)
	token := tokenOf(t, a.signup(t, "a@x.com"))

	rec := a.do(jsonRequest(http.MethodPost, "/logout", "", token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(jsonRequest(http.MethodGet, "/api/products", "", token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.ErrInvalidToken.Error(), decode(t, rec).Message)
}

func TestProducts_CRUD(t *testing.T) {
	a := newApp(t, 100)
	token := tokenOf(t, a.signup(t, "a@x.com"))

	p := a.createProduct(t, token, "W-1")
	assert.Equal(t, "W-1", p.Code)
	assert.True(t, p.Status)

	rec := a.do(jsonRequest(http.MethodPost, "/api/products", `{"name":"Other","code":"W-1","price":"1"}`, token))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(jsonRequest(http.MethodPut, "/api/products/"+p.ID.String(), `{"stock":9}`, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Product
	require.NoError(t, json.Unmarshal(decode(t, rec).Payload, &updated))
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, "Widget", updated.Name)

	rec = a.do(jsonRequest(http.MethodDelete, "/api/products/"+p.ID.String(), "", token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(jsonRequest(http.MethodGet, "/api/products/"+p.ID.String(), "", token))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts_DeleteUnknown(t *testing.T) {
	a := newApp(t, 100)
	token := tokenOf(t, a.signup(t, "a@x.com"))

	rec := a.do(jsonRequest(http.MethodDelete, "/api/products/"+uuid.NewString(), "", token))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode(t, rec).Message)

	rec = a.do(jsonRequest(http.MethodDelete, "/api/products/not-a-uuid", "", token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCarts_AddProductMerges(t *testing.T) {
	a := newApp(t, 100)
	token := tokenOf(t, a.signup(t, "a@x.com"))
	p := a.createProduct(t, token, "W-1")

	rec := a.do(jsonRequest(http.MethodPost, "/api/carts", "", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cart model.Cart
	require.NoError(t, json.Unmarshal(decode(t, rec).Payload, &cart))

	line := "/api/carts/" + cart.ID.String() + "/product/" + p.ID.String()
	for i := 0; i < 2; i++ {
		rec = a.do(jsonRequest(http.MethodPost, line, `{"quantity":2}`, token))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Payload, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	stranger := tokenOf(t, a.signup(t, "b@x.com"))
	rec = a.do(jsonRequest(http.MethodGet, "/api/carts/"+cart.ID.String(), "", stranger))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCarts_QuantityCapped(t *testing.T) {
	a := newApp(t, 100)
	token := tokenOf(t, a.signup(t, "a@x.com"))
	p := a.createProduct(t, token, "W-1")

	rec := a.do(jsonRequest(http.MethodPost, "/api/carts", "", token))
	require.Equal(t, http.StatusOK, rec.Code)
	var cart model.Cart
	require.NoError(t, json.Unmarshal(decode(t, rec).Payload, &cart))
	line := "/api/carts/" + cart.ID.String() + "/product/" + p.ID.String()

	rec = a.do(jsonRequest(http.MethodPost, line, `{"quantity":9223372036854775807}`, token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(jsonRequest(http.MethodPost, line, `{"quantity":9999}`, token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(jsonRequest(http.MethodPost, line, `{"quantity":2}`, token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(jsonRequest(http.MethodGet, "/api/carts/"+cart.ID.String(), "", token))
	require.Equal(t, http.StatusOK, rec.Code)
	var detail service.CartDetail
	require.NoError(t, json.Unmarshal(decode(t, rec).Payload, &detail))
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, 9999, detail.Lines[0].Quantity)
}

func TestOpsEndpoints(t *testing.T) {
	a := newApp(t, 100)

	rec := a.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	token := tokenOf(t, a.signup(t, "a@x.com"))
	rec = a.do(jsonRequest(http.MethodDelete, "/api/products/"+uuid.NewString(), "", token))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `storefront_http_requests_total{method="DELETE",path="/api/products/:id",status="404"} 1`)
	assert.NotContains(t, body, `storefront_http_requests_total{method="DELETE",path="/api/products/:id",status="200"}`)
}

func TestUnknownRoute(t *testing.T) {
	a := newApp(t, 100)

	rec := a.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)

	// Unknown paths under the secured API group still pass the token gate first.
	rec = a.do(jsonRequest(http.MethodGet, "/api/nope", "", ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := tokenOf(t, a.signup(t, "a@x.com"))
	rec = a.do(jsonRequest(http.MethodGet, "/api/nope", "", token))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", decode(t, rec).Status)
}

func TestLogin_RateLimited(t *testing.T) {
	a := newApp(t, 1)
	body := `{"email":"a@x.com","password":"pw123"}`

	rec := a.do(jsonRequest(http.MethodPost, "/login", body, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(jsonRequest(http.MethodPost, "/login", body, ""))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too many requests", decode(t, rec).Message)
}
