package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ProductInput holds the writable fields of a product. Nil pointers leave the stored
// value untouched on update; on create Name, Code and Price are mandatory.
type ProductInput struct {
	Name        *string
	Description *string
	Code        *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	Status      *bool
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Docs        []model.Product `json:"docs"`
	TotalDocs   int64           `json:"totalDocs"`
	Limit       int             `json:"limit"`
	Page        int             `json:"page"`
	TotalPages  int             `json:"totalPages"`
	HasPrevPage bool            `json:"hasPrevPage"`
	HasNextPage bool            `json:"hasNextPage"`
}

// ProductService handles catalog operations for both HTTP routes and the live channel.
type ProductService interface {
	List(ctx context.Context, q repository.ProductQuery) (*ProductPage, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, in ProductInput) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

// List returns a page of products. Limit is clamped to [1, 100], page starts at 1.
func (s *productService) List(ctx context.Context, q repository.ProductQuery) (*ProductPage, error) {
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Sort != "asc" && q.Sort != "desc" {
		q.Sort = ""
	}

	products, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	if totalPages == 0 {
		totalPages = 1
	}
	return &ProductPage{
		Docs:        products,
		TotalDocs:   total,
		Limit:       q.Limit,
		Page:        q.Page,
		TotalPages:  totalPages,
		HasPrevPage: q.Page > 1,
		HasNextPage: q.Page < totalPages,
	}, nil
}

func (s *productService) ListAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a product to the catalog; it is visible immediately.
func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	fields := map[string]string{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		fields["name"] = "required"
	}
	if in.Code == nil || strings.TrimSpace(*in.Code) == "" {
		fields["code"] = "required"
	}
	if in.Price == nil {
		fields["price"] = "required"
	}
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	product := &model.Product{Status: true}
	applyProductInput(product, in)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies the non-nil fields of in. Last write wins.
func (s *productService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProductInput(product, in)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func applyProductInput(p *model.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Code != nil {
		p.Code = strings.TrimSpace(*in.Code)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
}

func validateProduct(p *model.Product) error {
	fields := map[string]string{}
	if p.Name == "" {
		fields["name"] = "required"
	}
	if p.Code == "" {
		fields["code"] = "required"
	}
	if p.Price.IsNegative() {
		fields["price"] = "gte=0"
	}
	if p.Stock < 0 {
		fields["stock"] = "gte=0"
	}
	if len(fields) > 0 {
		return &apperrors.ValidationError{Fields: fields}
	}
	return nil
}
