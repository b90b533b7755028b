package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"ecofinds_backend/internal/listing"
	"ecofinds_backend/models"

	"github.com/shopspring/decimal"
)

// Listings manages the signed-in seller's products.
type Listings struct {
	c *Client

	// MaxPrice caps prices during local validation; zero uses the default cap.
	MaxPrice decimal.Decimal
}

func (c *Client) Listings() *Listings { return &Listings{c: c} }

type listingPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Images      []string `json:"images"`
	LocalPickup bool     `json:"local_pickup"`
	Shippable   bool     `json:"shippable"`
	Stock       int      `json:"stock"`
	Location    string   `json:"location"`
}

// payload validates f locally and returns the body to send. The price
// string is sent as a JSON number.
func (l *Listings) payload(f ListingForm) (*listingPayload, error) {
	valid, errs := listing.Validate(f, l.MaxPrice)
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return &listingPayload{
		Title:       valid.Title,
		Description: valid.Description,
		Price:       valid.Amount.InexactFloat64(),
		Category:    valid.Category,
		Condition:   valid.Condition,
		Images:      valid.Images,
		LocalPickup: valid.LocalPickup,
		Shippable:   valid.Shippable,
		Stock:       valid.Stock,
		Location:    valid.Location,
	}, nil
}

func (l *Listings) Create(ctx context.Context, f ListingForm) (*models.Product, error) {
	if err := l.c.authed("list a product"); err != nil {
		return nil, err
	}
	body, err := l.payload(f)
	if err != nil {
		return nil, err
	}
	var resp envelope[*models.Product]
	if err := l.c.do(ctx, http.MethodPost, "/api/products", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (l *Listings) Update(ctx context.Context, id uint, f ListingForm) (*models.Product, error) {
	if err := l.c.authed("edit a listing"); err != nil {
		return nil, err
	}
	body, err := l.payload(f)
	if err != nil {
		return nil, err
	}
	var resp envelope[*models.Product]
	if err := l.c.do(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (l *Listings) Delete(ctx context.Context, id uint) error {
	if err := l.c.authed("delete a listing"); err != nil {
		return err
	}
	return l.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, nil, nil)
}

// ToggleStatus flips an active listing to inactive and back.
func (l *Listings) ToggleStatus(ctx context.Context, p *models.Product) error {
	if err := l.c.authed("change a listing"); err != nil {
		return err
	}
	next := models.ProductInactive
	if p.Status != models.ProductActive {
		next = models.ProductActive
	}
	var resp envelope[*models.Product]
	if err := l.c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/products/%d/status", p.ID), nil,
		map[string]string{"status": next}, &resp); err != nil {
		return err
	}
	p.Status = next
	return nil
}

// Mine lists the seller's products, optionally filtered by status.
func (l *Listings) Mine(ctx context.Context, status string) ([]models.Product, error) {
	if err := l.c.authed("view your listings"); err != nil {
		return nil, err
	}
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var resp envelope[[]models.Product]
	if err := l.c.do(ctx, http.MethodGet, "/api/my-products", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type bulkResponse struct {
	Affected int64 `json:"affected"`
}

func (l *Listings) bulk(ctx context.Context, body map[string]interface{}) (int64, error) {
	if err := l.c.authed("manage listings"); err != nil {
		return 0, err
	}
	var resp bulkResponse
	if err := l.c.do(ctx, http.MethodPost, "/api/my-products/bulk", nil, body, &resp); err != nil {
		return 0, err
	}
	return resp.Affected, nil
}

// BulkDelete removes the selected listings and returns how many were deleted.
func (l *Listings) BulkDelete(ctx context.Context, sel *Selection) (int64, error) {
	n, err := l.bulk(ctx, map[string]interface{}{"action": "delete", "ids": sel.IDs()})
	if err == nil {
		sel.Clear()
	}
	return n, err
}

func (l *Listings) BulkStatus(ctx context.Context, sel *Selection, status string) (int64, error) {
	return l.bulk(ctx, map[string]interface{}{"action": "status", "ids": sel.IDs(), "status": status})
}

// Selection is the set of listings picked for a bulk action.
type Selection struct {
	mu  sync.Mutex
	ids map[uint]struct{}
}

func NewSelection() *Selection { return &Selection{ids: map[uint]struct{}{}} }

func (s *Selection) Select(ids ...uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) Deselect(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

// Toggle reports whether id is selected afterwards.
func (s *Selection) Toggle(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// SelectAll selects every product in ps, or clears the selection if all are already selected.
func (s *Selection) SelectAll(ps []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := len(ps) > 0
	for _, p := range ps {
		if _, ok := s.ids[p.ID]; !ok {
			all = false
			break
		}
	}
	if all {
		s.ids = map[uint]struct{}{}
		return
	}
	for _, p := range ps {
		s.ids[p.ID] = struct{}{}
	}
}

func (s *Selection) Has(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = map[uint]struct{}{}
}

// IDs returns the selection in ascending order.
func (s *Selection) IDs() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
