package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	apperrors "storefront/internal/errors"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// ProductHandler serves the catalog as pages and as a JSON API. Every mutation is
// followed by a products broadcast to live clients.
type ProductHandler struct {
	products  service.ProductService
	publisher ProductPublisher
	log       *logrus.Logger
}

// NewProductHandler creates a product handler.
func NewProductHandler(products service.ProductService, publisher ProductPublisher, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{products: products, publisher: publisher, log: log}
}

// ProductListQuery holds the listing parameters.
type ProductListQuery struct {
	Limit    int    `query:"limit" validate:"gte=0"`
	Page     int    `query:"page" validate:"gte=0"`
	Sort     string `query:"sort" validate:"omitempty,oneof=asc desc"`
	Category string `query:"category" validate:"max=100"`
}

// ProductRequest is the API body for create and update. Omitted fields are left
// unchanged on update.
type ProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Code        *string          `json:"code" validate:"omitempty,min=1,max=64"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string" example:"19.99"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Status      *bool            `json:"status"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Code:        r.Code,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		Status:      r.Status,
	}
}

// ProductForm is the HTML create form.
type ProductForm struct {
	Name        string `form:"name" validate:"required,max=200"`
	Description string `form:"description" validate:"max=2000"`
	Code        string `form:"code" validate:"required,max=64"`
	Price       string `form:"price" validate:"required"`
	Stock       int    `form:"stock" validate:"gte=0"`
	Category    string `form:"category" validate:"max=100"`
}

func (f ProductForm) input() (service.ProductInput, error) {
	price, err := decimal.NewFromString(f.Price)
	if err != nil {
		return service.ProductInput{}, apperrors.NewValidationError("price", "decimal")
	}
	return service.ProductInput{
		Name:        &f.Name,
		Description: &f.Description,
		Code:        &f.Code,
		Price:       &price,
		Stock:       &f.Stock,
		Category:    &f.Category,
	}, nil
}

func (h *ProductHandler) listPage(c echo.Context) (*service.ProductPage, ProductListQuery, error) {
	var q ProductListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return nil, q, err
	}
	page, err := h.products.List(c.Request().Context(), repository.ProductQuery{
		Limit:    q.Limit,
		Page:     q.Page,
		Sort:     q.Sort,
		Category: q.Category,
	})
	return page, q, err
}

// publish failures are logged; the HTTP mutation already succeeded.
func (h *ProductHandler) publish(c echo.Context) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishProducts(c.Request().Context()); err != nil {
		h.log.WithError(err).Warn("broadcast products")
	}
}

// ListView renders one page of the catalog.
func (h *ProductHandler) ListView(c echo.Context) error {
	page, q, err := h.listPage(c)
	if err != nil {
		return err
	}
	p, _ := currentPrincipal(c)
	return c.Render(http.StatusOK, "products", echo.Map{
		"Title":    "Products",
		"User":     p,
		"Page":     page,
		"PrevLink": pageLink(q, page.Page-1, page.Limit),
		"NextLink": pageLink(q, page.Page+1, page.Limit),
	})
}

func pageLink(q ProductListQuery, page, limit int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return "/products?" + v.Encode()
}

// DetailView renders one product.
func (h *ProductHandler) DetailView(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "product", echo.Map{"Title": product.Name, "Product": product})
}

// CreateForm creates a product from the catalog page form.
func (h *ProductHandler) CreateForm(c echo.Context) error {
	var form ProductForm
	if err := bindAndValidate(c, &form); err != nil {
		return err
	}
	in, err := form.input()
	if err != nil {
		return err
	}
	product, err := h.products.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	h.publish(c)
	return redirect(c, fmt.Sprintf("/products/%s", product.ID))
}

// RealtimeView renders the live product page; updates arrive over the websocket.
func (h *ProductHandler) RealtimeView(c echo.Context) error {
	products, err := h.products.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "realtimeproducts", echo.Map{"Title": "Live products", "Products": products})
}

// List godoc
// @Summary List products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 10, max 100)"
// @Param page query int false "Page number, from 1"
// @Param sort query string false "Sort by price" Enums(asc, desc)
// @Param category query string false "Category filter"
// @Success 200 {object} errors.Envelope{payload=service.ProductPage}
// @Failure 400 {object} errors.Envelope
// @Failure 401 {object} errors.Envelope
// @Router /api/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	page, _, err := h.listPage(c)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, page)
}

// Get godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} errors.Envelope{payload=model.Product}
// @Failure 404 {object} errors.Envelope
// @Router /api/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, product)
}

// Create godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProductRequest true "Product"
// @Success 201 {object} errors.Envelope{payload=model.Product}
// @Failure 400 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /api/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product, err := h.products.Create(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	h.publish(c)
	return success(c, http.StatusCreated, product)
}

// Update godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body ProductRequest true "Fields to change"
// @Success 200 {object} errors.Envelope{payload=model.Product}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /api/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product, err := h.products.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return err
	}
	h.publish(c)
	return success(c, http.StatusOK, product)
}

// Delete godoc
// @Summary Delete a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.publish(c)
	return success(c, http.StatusOK, echo.Map{"id": id})
}
