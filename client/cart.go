package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"ecofinds_backend/models"

	"github.com/shopspring/decimal"
)

// Cart mirrors the server cart. Every mutation replaces local state with
// the cart the server returns.
type Cart struct {
	c *Client

	mu   sync.RWMutex
	view models.CartView
}

func (c *Client) Cart() *Cart {
	return &Cart{c: c, view: models.CartView{Items: []models.CartLine{}, Total: decimal.Zero}}
}

func (k *Cart) call(ctx context.Context, action, method, path string, body interface{}) error {
	if err := k.c.authed(action); err != nil {
		return err
	}
	var view models.CartView
	if err := k.c.do(ctx, method, path, nil, body, &view); err != nil {
		return err
	}
	if view.Items == nil {
		view.Items = []models.CartLine{}
	}
	k.mu.Lock()
	k.view = view
	k.mu.Unlock()
	return nil
}

// Refresh reloads the cart from the server.
func (k *Cart) Refresh(ctx context.Context) error {
	return k.call(ctx, "view your cart", http.MethodGet, "/api/cart", nil)
}

func (k *Cart) Add(ctx context.Context, productID uint, quantity int) error {
	return k.call(ctx, "add items to your cart", http.MethodPost, "/api/cart/items", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})
}

func (k *Cart) Update(ctx context.Context, productID uint, quantity int) error {
	return k.call(ctx, "update your cart", http.MethodPut, fmt.Sprintf("/api/cart/items/%d", productID),
		map[string]int{"quantity": quantity})
}

func (k *Cart) Remove(ctx context.Context, productID uint) error {
	return k.call(ctx, "update your cart", http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", productID), nil)
}

func (k *Cart) Clear(ctx context.Context) error {
	return k.call(ctx, "clear your cart", http.MethodDelete, "/api/cart", nil)
}

// Reset drops local state, e.g. after logout or checkout.
func (k *Cart) Reset() {
	k.mu.Lock()
	k.view = models.CartView{Items: []models.CartLine{}, Total: decimal.Zero}
	k.mu.Unlock()
}

func (k *Cart) Items() []models.CartLine {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]models.CartLine, len(k.view.Items))
	copy(out, k.view.Items)
	return out
}

// Total is the sum of price x quantity over the current items.
func (k *Cart) Total() decimal.Decimal {
	k.mu.RLock()
	defer k.mu.RUnlock()
	total := decimal.Zero
	for _, it := range k.view.Items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ItemCount is the sum of quantities.
func (k *Cart) ItemCount() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	n := 0
	for _, it := range k.view.Items {
		n += it.Quantity
	}
	return n
}

func (k *Cart) Contains(productID uint) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	for _, it := range k.view.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
