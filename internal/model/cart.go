package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// MaxItemQuantity caps the quantity of a single cart line.
const MaxItemQuantity = 10000

// CartItem is one line of a cart.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart belongs to exactly one user. Items are stored as a single JSON document so the
// whole cart is read and written as one record.
type Cart struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerUserID uuid.UUID  `json:"owner_user_id" gorm:"type:char(36);uniqueIndex;not null"`
	Items       []CartItem `json:"items" gorm:"serializer:json;type:json"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	return nil
}

// AddItem merges by product: an existing line has its quantity increased.
func (c *Cart) AddItem(productID uuid.UUID, quantity int) {
	_, idx, ok := lo.FindIndexOf(c.Items, func(it CartItem) bool { return it.ProductID == productID })
	if ok {
		c.Items[idx].Quantity += quantity
		return
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity})
}

// QuantityOf returns the quantity of the line for productID, or 0.
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	it, ok := lo.Find(c.Items, func(it CartItem) bool { return it.ProductID == productID })
	if !ok {
		return 0
	}
	return it.Quantity
}

// SetQuantity replaces the quantity of an existing line. It reports whether the line exists.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) bool {
	_, idx, ok := lo.FindIndexOf(c.Items, func(it CartItem) bool { return it.ProductID == productID })
	if !ok {
		return false
	}
	c.Items[idx].Quantity = quantity
	return true
}

// RemoveItem drops the line for productID. It reports whether a line was removed.
func (c *Cart) RemoveItem(productID uuid.UUID) bool {
	before := len(c.Items)
	c.Items = lo.Reject(c.Items, func(it CartItem, _ int) bool { return it.ProductID == productID })
	return len(c.Items) != before
}

// ReplaceItems sets the cart content, merging duplicate product lines.
func (c *Cart) ReplaceItems(items []CartItem) {
	c.Items = []CartItem{}
	for _, it := range items {
		c.AddItem(it.ProductID, it.Quantity)
	}
}

// TotalQuantity sums all line quantities.
func (c *Cart) TotalQuantity() int {
	return lo.SumBy(c.Items, func(it CartItem) int { return it.Quantity })
}
