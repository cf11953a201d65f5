package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// ProductQuery filters and pages a catalog listing. Zero values mean "no filter".
type ProductQuery struct {
	Limit    int
	Page     int
	Sort     string // "asc" or "desc" by price
	Category string
}

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q ProductQuery) ([]model.Product, int64, error)
	ListAll(ctx context.Context) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return translate("create product", r.db.WithContext(ctx).Create(product).Error)
}

// Update overwrites every column of an existing product.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return translate("update product", r.db.WithContext(ctx).Save(product).Error)
}

// FindByID finds a product by ID.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate("find product", err)
	}
	return &product, nil
}

// FindByCode finds a product by its unique code.
func (r *productRepository) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&product).Error; err != nil {
		return nil, translate("find product by code", err)
	}
	return &product, nil
}

// Delete removes a product from the catalog.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		return translate("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return translate("delete product", gorm.ErrRecordNotFound)
	}
	return nil
}

// List returns one page of products and the total number matching the filter.
func (r *productRepository) List(ctx context.Context, q ProductQuery) ([]model.Product, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if q.Category != "" {
			return db.Where("category = ?", q.Category)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translate("count products", err)
	}

	query := r.db.WithContext(ctx).Scopes(filter)
	switch q.Sort {
	case "asc":
		query = query.Order("price asc")
	case "desc":
		query = query.Order("price desc")
	default:
		query = query.Order("created_at asc")
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
		if q.Page > 1 {
			query = query.Offset((q.Page - 1) * q.Limit)
		}
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, translate("list products", err)
	}
	return products, total, nil
}

// ListAll returns the whole catalog, used for live product broadcasts.
func (r *productRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&products).Error; err != nil {
		return nil, translate("list products", err)
	}
	return products, nil
}
