package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is created on a user's first add and persists across logouts.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product"`
}

// CartLine is one entry of the cart payload returned after every cart call.
type CartLine struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   Product         `json:"product"`
}

// CartView is the authoritative cart snapshot sent to clients.
type CartView struct {
	Items []CartLine      `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// NewCartView builds the snapshot, skipping items whose product is gone.
func NewCartView(items []CartItem) CartView {
	view := CartView{Items: make([]CartLine, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		if it.Product.ID == 0 {
			continue
		}
		subtotal := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		view.Items = append(view.Items, CartLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Subtotal:  subtotal,
			Product:   it.Product,
		})
		view.Count += it.Quantity
		view.Total = view.Total.Add(subtotal)
	}
	return view
}
