package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ecofinds_backend/models"

	"github.com/shopspring/decimal"
)

type checkoutResponse struct {
	Data  []models.Order  `json:"data"`
	Total decimal.Decimal `json:"total"`
}

// Checkout turns the server cart into orders. The caller's Cart should be refreshed afterwards.
func (c *Client) Checkout(ctx context.Context, paymentMethod string) ([]models.Order, decimal.Decimal, error) {
	if err := c.authed("check out"); err != nil {
		return nil, decimal.Zero, err
	}
	var resp checkoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders/checkout", nil,
		map[string]string{"payment_method": paymentMethod}, &resp); err != nil {
		return nil, decimal.Zero, err
	}
	return resp.Data, resp.Total, nil
}

// Purchases is the buyer's order history, newest first.
func (c *Client) Purchases(ctx context.Context, status string) ([]models.Order, error) {
	return c.orders(ctx, "/api/orders", status)
}

// Sales lists orders placed on the caller's listings.
func (c *Client) Sales(ctx context.Context, status string) ([]models.Order, error) {
	return c.orders(ctx, "/api/orders/sales", status)
}

func (c *Client) orders(ctx context.Context, path, status string) ([]models.Order, error) {
	if err := c.authed("view your orders"); err != nil {
		return nil, err
	}
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var resp envelope[[]models.Order]
	if err := c.do(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Order(ctx context.Context, id uint) (*models.Order, error) {
	if err := c.authed("view an order"); err != nil {
		return nil, err
	}
	var resp envelope[*models.Order]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus, tracking string) (*models.Order, error) {
	if err := c.authed("update an order"); err != nil {
		return nil, err
	}
	var resp envelope[*models.Order]
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", id), nil, map[string]string{
		"status":          string(status),
		"tracking_number": tracking,
	}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
