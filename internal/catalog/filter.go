package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SortRelevance = "relevance"
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
)

// Price slider bounds the UI starts from. Untouched bounds are not sent.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 1000
)

const (
	DefaultLimit = 12
	MaxLimit     = 50
)

func IsSort(s string) bool {
	switch s {
	case SortRelevance, SortNewest, SortOldest, SortPriceLow, SortPriceHigh:
		return true
	}
	return false
}

// Filter is the set of catalog selections made in a UI.
type Filter struct {
	Search    string
	Category  string
	Condition string
	MinPrice  float64
	MaxPrice  float64
	Sort      string
}

// DefaultFilter is the untouched filter panel.
func DefaultFilter() Filter {
	return Filter{MinPrice: DefaultMinPrice, MaxPrice: DefaultMaxPrice, Sort: SortRelevance}
}

// Values encodes f for the listing endpoint, leaving out anything at its
// default so the server applies its own.
func (f Filter) Values(page, limit int) url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("q", s)
	}
	if f.Category != "" && f.Category != "all" {
		v.Set("category", f.Category)
	}
	if f.Condition != "" && f.Condition != "all" {
		v.Set("condition", f.Condition)
	}
	if f.MinPrice > DefaultMinPrice {
		v.Set("min_price", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 && f.MaxPrice != DefaultMaxPrice {
		v.Set("max_price", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Sort != "" && f.Sort != SortRelevance {
		v.Set("sort", f.Sort)
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

// Query is a parsed listing request as seen by the API.
type Query struct {
	Search    string
	Category  string
	Condition string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Sort      string
	Page      int
	Limit     int
}

func (q Query) Offset() int { return (q.Page - 1) * q.Limit }

// ParseQuery reads listing parameters; malformed values fall back to defaults.
func ParseQuery(get func(key string) string) Query {
	q := Query{
		Search:    strings.TrimSpace(get("q")),
		Category:  strings.TrimSpace(get("category")),
		Condition: strings.TrimSpace(get("condition")),
		Sort:      get("sort"),
		Page:      atoiDefault(get("page"), 1),
		Limit:     atoiDefault(get("limit"), DefaultLimit),
	}
	if q.Category == "all" {
		q.Category = ""
	}
	if q.Condition == "all" {
		q.Condition = ""
	}
	if !IsSort(q.Sort) {
		q.Sort = SortRelevance
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	q.MinPrice = decimalParam(get("min_price"))
	q.MaxPrice = decimalParam(get("max_price"))
	return q
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func decimalParam(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}
