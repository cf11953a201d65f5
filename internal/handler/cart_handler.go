package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/service"
)

// CartHandler serves the caller's cart. Carts of other users answer 404.
type CartHandler struct {
	carts service.CartService
}

// NewCartHandler creates a cart handler.
func NewCartHandler(carts service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// CartItemRequest is one line of a replace request.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0,lte=10000"`
}

// ReplaceCartRequest overwrites the whole cart.
type ReplaceCartRequest struct {
	Items []CartItemRequest `json:"items" validate:"dive"`
}

// AddProductRequest adds quantity of a product; quantity defaults to 1.
type AddProductRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=10000"`
}

// SetQuantityRequest replaces the quantity of a line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0,lte=10000"`
}

// View renders the caller's cart, creating it on first visit.
func (h *CartHandler) View(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	cart, err := h.carts.Mine(ctx, p)
	if err != nil {
		return err
	}
	detail, err := h.carts.Detail(ctx, cart)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "cart", echo.Map{"Title": "Cart", "Cart": detail})
}

// EnsureForm makes sure the caller has a cart and shows it.
func (h *CartHandler) EnsureForm(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if _, err := h.carts.Mine(c.Request().Context(), p); err != nil {
		return err
	}
	return redirect(c, "/carts")
}

// Mine godoc
// @Summary Get the caller's cart with resolved products
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope{payload=service.CartDetail}
// @Failure 401 {object} errors.Envelope
// @Router /api/carts [get]
func (h *CartHandler) Mine(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	cart, err := h.carts.Mine(ctx, p)
	if err != nil {
		return err
	}
	detail, err := h.carts.Detail(ctx, cart)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, detail)
}

// Ensure godoc
// @Summary Create the caller's cart if it does not exist
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope{payload=model.Cart}
// @Router /api/carts [post]
func (h *CartHandler) Ensure(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	cart, err := h.carts.Mine(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, cart)
}

// Get godoc
// @Summary Get a cart
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart ID"
// @Success 200 {object} errors.Envelope{payload=service.CartDetail}
// @Failure 404 {object} errors.Envelope
// @Router /api/carts/{id} [get]
func (h *CartHandler) Get(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	cart, err := h.carts.Get(ctx, p, id)
	if err != nil {
		return err
	}
	detail, err := h.carts.Detail(ctx, cart)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, detail)
}

// Replace godoc
// @Summary Replace every item of a cart
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart ID"
// @Param request body ReplaceCartRequest true "Items"
// @Success 200 {object} errors.Envelope{payload=model.Cart}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/carts/{id} [put]
func (h *CartHandler) Replace(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ReplaceCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	items := make([]model.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.CartItem{ProductID: uuid.MustParse(it.ProductID), Quantity: it.Quantity})
	}
	cart, err := h.carts.ReplaceItems(c.Request().Context(), p, id, items)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, cart)
}

// Clear godoc
// @Summary Remove every item of a cart
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart ID"
// @Success 200 {object} errors.Envelope{payload=model.Cart}
// @Failure 404 {object} errors.Envelope
// @Router /api/carts/{id} [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cart, err := h.carts.Clear(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, cart)
}

// AddProduct godoc
// @Summary Add a product to a cart; an existing line has its quantity increased
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart ID"
// @Param pid path string true "Product ID"
// @Param request body AddProductRequest false "Quantity, default 1"
// @Success 200 {object} errors.Envelope{payload=model.Cart}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/carts/{id}/product/{pid} [post]
func (h *CartHandler) AddProduct(c echo.Context) error {
	p, cartID, productID, err := h.lineParams(c)
	if err != nil {
		return err
	}
	var req AddProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	cart, err := h.carts.AddProduct(c.Request().Context(), p, cartID, productID, req.Quantity)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, cart)
}

// SetQuantity godoc
// @Summary Replace the quantity of a cart line
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart ID"
// @Param pid path string true "Product ID"
// @Param request body SetQuantityRequest true "Quantity"
// @Success 200 {object} errors.Envelope{payload=model.Cart}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/carts/{id}/product/{pid} [put]
func (h *CartHandler) SetQuantity(c echo.Context) error {
	p, cartID, productID, err := h.lineParams(c)
	if err != nil {
		return err
	}
	var req SetQuantityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cart, err := h.carts.SetQuantity(c.Request().Context(), p, cartID, productID, req.Quantity)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, cart)
}

// RemoveProduct godoc
// @Summary Remove a line from a cart
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart ID"
// @Param pid path string true "Product ID"
// @Success 200 {object} errors.Envelope{payload=model.Cart}
// @Failure 404 {object} errors.Envelope
// @Router /api/carts/{id}/product/{pid} [delete]
func (h *CartHandler) RemoveProduct(c echo.Context) error {
	p, cartID, productID, err := h.lineParams(c)
	if err != nil {
		return err
	}
	cart, err := h.carts.RemoveProduct(c.Request().Context(), p, cartID, productID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, cart)
}

func (h *CartHandler) lineParams(c echo.Context) (*auth.Principal, uuid.UUID, uuid.UUID, error) {
	p, err := currentPrincipal(c)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	cartID, err := pathID(c, "id")
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	productID, err := pathID(c, "pid")
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	return p, cartID, productID, nil
}
