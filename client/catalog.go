package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"ecofinds_backend/models"
)

// Feed is a paginated product listing. Search starts over; LoadMore appends the next page.
type Feed struct {
	c     *Client
	Limit int

	mu       sync.RWMutex
	filter   Filter
	products []models.Product
	meta     models.PaginationMeta
}

func (c *Client) Feed(limit int) *Feed {
	return &Feed{c: c, Limit: limit, filter: DefaultFilter(), products: []models.Product{}}
}

type productPage struct {
	Data []models.Product     `json:"data"`
	Meta models.PaginationMeta `json:"meta"`
}

func (f *Feed) fetch(ctx context.Context, filter Filter, page int) (*productPage, error) {
	var resp productPage
	if err := f.c.do(ctx, http.MethodGet, "/api/products", filter.Values(page, f.Limit), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search replaces the feed with the first page matching filter.
func (f *Feed) Search(ctx context.Context, filter Filter) error {
	resp, err := f.fetch(ctx, filter, 1)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	f.products = append([]models.Product{}, resp.Data...)
	f.meta = resp.Meta
	return nil
}

// LoadMore appends the next page. It is a no-op once the last page is loaded.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.RLock()
	filter, meta := f.filter, f.meta
	f.mu.RUnlock()

	if !meta.HasNext {
		return nil
	}
	resp, err := f.fetch(ctx, filter, meta.CurrentPage+1)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, resp.Data...)
	f.meta = resp.Meta
	return nil
}

func (f *Feed) Products() []models.Product {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Product, len(f.products))
	copy(out, f.products)
	return out
}

func (f *Feed) HasMore() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.meta.HasNext
}

func (f *Feed) Filter() Filter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter
}

func (c *Client) Product(ctx context.Context, id uint) (*models.Product, error) {
	var resp envelope[*models.Product]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var resp envelope[[]models.Category]
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
