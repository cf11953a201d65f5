package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// CartLine is a cart item joined with its product for display.
type CartLine struct {
	Product  *model.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartDetail is a cart with resolved product lines.
type CartDetail struct {
	Cart  *model.Cart     `json:"cart"`
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// CartService handles cart operations. Carts are visible only to their owner and admins;
// anyone else gets ErrNotFound.
type CartService interface {
	Mine(ctx context.Context, p *auth.Principal) (*model.Cart, error)
	Get(ctx context.Context, p *auth.Principal, cartID uuid.UUID) (*model.Cart, error)
	Detail(ctx context.Context, cart *model.Cart) (*CartDetail, error)
	AddProduct(ctx context.Context, p *auth.Principal, cartID, productID uuid.UUID, quantity int) (*model.Cart, error)
	SetQuantity(ctx context.Context, p *auth.Principal, cartID, productID uuid.UUID, quantity int) (*model.Cart, error)
	RemoveProduct(ctx context.Context, p *auth.Principal, cartID, productID uuid.UUID) (*model.Cart, error)
	ReplaceItems(ctx context.Context, p *auth.Principal, cartID uuid.UUID, items []model.CartItem) (*model.Cart, error)
	Clear(ctx context.Context, p *auth.Principal, cartID uuid.UUID) (*model.Cart, error)
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

// Mine returns the caller's cart, creating it on first use.
func (s *cartService) Mine(ctx context.Context, p *auth.Principal) (*model.Cart, error) {
	cart, err := s.carts.FindByOwner(ctx, p.ID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	cart = &model.Cart{OwnerUserID: p.ID, Items: []model.CartItem{}}
	if err := s.carts.Create(ctx, cart); err != nil {
		// Another request created it first.
		if errors.Is(err, apperrors.ErrConflict) {
			return s.carts.FindByOwner(ctx, p.ID)
		}
		return nil, err
	}
	return cart, nil
}

func (s *cartService) Get(ctx context.Context, p *auth.Principal, cartID uuid.UUID) (*model.Cart, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.OwnerUserID != p.ID && !p.IsAdmin() {
		return nil, fmt.Errorf("cart %s: %w", cartID, apperrors.ErrNotFound)
	}
	return cart, nil
}

// Detail resolves every line's product. Lines whose product was deleted are skipped.
func (s *cartService) Detail(ctx context.Context, cart *model.Cart) (*CartDetail, error) {
	detail := &CartDetail{Cart: cart, Lines: []CartLine{}, Total: decimal.Zero}
	for _, item := range cart.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		detail.Lines = append(detail.Lines, CartLine{Product: product, Quantity: item.Quantity, Subtotal: subtotal})
		detail.Total = detail.Total.Add(subtotal)
	}
	return detail, nil
}

// AddProduct merges by product id: adding an existing product increments its quantity.
func (s *cartService) AddProduct(ctx context.Context, p *auth.Principal, cartID, productID uuid.UUID, quantity int) (*model.Cart, error) {
	if err := checkQuantity("quantity", quantity); err != nil {
		return nil, err
	}
	return s.mutate(ctx, p, cartID, func(cart *model.Cart) error {
		if _, err := s.products.FindByID(ctx, productID); err != nil {
			return err
		}
		if cart.QuantityOf(productID) > model.MaxItemQuantity-quantity {
			return apperrors.NewValidationError("quantity", maxQuantityTag)
		}
		cart.AddItem(productID, quantity)
		return nil
	})
}

// SetQuantity replaces the quantity of an existing line.
func (s *cartService) SetQuantity(ctx context.Context, p *auth.Principal, cartID, productID uuid.UUID, quantity int) (*model.Cart, error) {
	if err := checkQuantity("quantity", quantity); err != nil {
		return nil, err
	}
	return s.mutate(ctx, p, cartID, func(cart *model.Cart) error {
		if !cart.SetQuantity(productID, quantity) {
			return fmt.Errorf("product %s in cart: %w", productID, apperrors.ErrNotFound)
		}
		return nil
	})
}

func (s *cartService) RemoveProduct(ctx context.Context, p *auth.Principal, cartID, productID uuid.UUID) (*model.Cart, error) {
	return s.mutate(ctx, p, cartID, func(cart *model.Cart) error {
		if !cart.RemoveItem(productID) {
			return fmt.Errorf("product %s in cart: %w", productID, apperrors.ErrNotFound)
		}
		return nil
	})
}

// ReplaceItems overwrites the cart content. Every product must exist.
func (s *cartService) ReplaceItems(ctx context.Context, p *auth.Principal, cartID uuid.UUID, items []model.CartItem) (*model.Cart, error) {
	merged := make(map[uuid.UUID]int, len(items))
	for i, it := range items {
		field := fmt.Sprintf("items[%d].quantity", i)
		if err := checkQuantity(field, it.Quantity); err != nil {
			return nil, err
		}
		if merged[it.ProductID] > model.MaxItemQuantity-it.Quantity {
			return nil, apperrors.NewValidationError(field, maxQuantityTag)
		}
		merged[it.ProductID] += it.Quantity
	}
	return s.mutate(ctx, p, cartID, func(cart *model.Cart) error {
		for _, it := range items {
			if _, err := s.products.FindByID(ctx, it.ProductID); err != nil {
				return err
			}
		}
		cart.ReplaceItems(items)
		return nil
	})
}

func (s *cartService) Clear(ctx context.Context, p *auth.Principal, cartID uuid.UUID) (*model.Cart, error) {
	return s.mutate(ctx, p, cartID, func(cart *model.Cart) error {
		cart.Items = []model.CartItem{}
		return nil
	})
}

var maxQuantityTag = fmt.Sprintf("lte=%d", model.MaxItemQuantity)

func checkQuantity(field string, quantity int) error {
	if quantity <= 0 {
		return apperrors.NewValidationError(field, "gt=0")
	}
	if quantity > model.MaxItemQuantity {
		return apperrors.NewValidationError(field, maxQuantityTag)
	}
	return nil
}

// mutate is read-modify-write without locking; concurrent writers race and the last
// Save wins.
func (s *cartService) mutate(ctx context.Context, p *auth.Principal, cartID uuid.UUID, fn func(*model.Cart) error) (*model.Cart, error) {
	cart, err := s.Get(ctx, p, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
