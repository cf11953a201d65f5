package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// CartRepository defines cart persistence operations.
type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	Save(ctx context.Context, cart *model.Cart) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cart, error)
	FindByOwner(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository.
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// Create creates a new cart.
func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) error {
	return translate("create cart", r.db.WithContext(ctx).Create(cart).Error)
}

// Save writes the whole cart document. Concurrent saves are last-write-wins.
func (r *cartRepository) Save(ctx context.Context, cart *model.Cart) error {
	return translate("save cart", r.db.WithContext(ctx).Save(cart).Error)
}

// FindByID finds a cart by ID.
func (r *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, translate("find cart", err)
	}
	return &cart, nil
}

// FindByOwner finds the cart of a user.
func (r *cartRepository) FindByOwner(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("owner_user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, translate("find cart by owner", err)
	}
	return &cart, nil
}
