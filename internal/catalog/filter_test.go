package catalog

import (
	"net/url"
	"testing"
)

func TestDefaultFilterOmitsDefaults(t *testing.T) {
	v := DefaultFilter().Values(1, 0)
	for _, key := range []string{"min_price", "max_price", "sort", "q", "category", "condition", "page"} {
		if v.Has(key) {
			t.Errorf("default filter sent %s=%q", key, v.Get(key))
		}
	}
	if len(v) != 0 {
		t.Errorf("values = %v, want empty", v)
	}
}

func TestFilterValues(t *testing.T) {
	f := Filter{
		Search:    "  lamp ",
		Category:  "home-garden",
		Condition: "good",
		MinPrice:  5,
		MaxPrice:  250.5,
		Sort:      SortPriceLow,
	}
	got := f.Values(3, 12)
	want := url.Values{
		"q":         {"lamp"},
		"category":  {"home-garden"},
		"condition": {"good"},
		"min_price": {"5"},
		"max_price": {"250.5"},
		"sort":      {"price_low"},
		"page":      {"3"},
		"limit":     {"12"},
	}
	if got.Encode() != want.Encode() {
		t.Errorf("values = %s\nwant     %s", got.Encode(), want.Encode())
	}
}

func TestFilterKeepsNonDefaultBoundsOnly(t *testing.T) {
	f := DefaultFilter()
	f.MaxPrice = 400
	v := f.Values(1, 0)
	if v.Get("max_price") != "400" || v.Has("min_price") {
		t.Errorf("values = %v", v)
	}

	f = DefaultFilter()
	f.Category = "all"
	if v := f.Values(1, 0); v.Has("category") {
		t.Errorf("category all should be omitted: %v", v)
	}
}

func TestParseQueryDefaultsAndClamps(t *testing.T) {
	q := ParseQuery(url.Values{}.Get)
	if q.Page != 1 || q.Limit != DefaultLimit || q.Sort != SortRelevance || q.MinPrice != nil || q.MaxPrice != nil {
		t.Errorf("defaults = %+v", q)
	}

	q = ParseQuery(url.Values{
		"page":      {"-2"},
		"limit":     {"500"},
		"sort":      {"random"},
		"min_price": {"abc"},
		"max_price": {"99.5"},
		"category":  {"all"},
	}.Get)
	if q.Page != 1 || q.Limit != MaxLimit || q.Sort != SortRelevance || q.Category != "" {
		t.Errorf("clamped = %+v", q)
	}
	if q.MinPrice != nil {
		t.Errorf("malformed min_price parsed as %v", q.MinPrice)
	}
	if q.MaxPrice == nil || q.MaxPrice.String() != "99.5" {
		t.Errorf("max_price = %v", q.MaxPrice)
	}

	q = ParseQuery(url.Values{"page": {"3"}, "limit": {"10"}}.Get)
	if q.Offset() != 20 {
		t.Errorf("offset = %d, want 20", q.Offset())
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"lamp":      "lamp",
		"50%":       `50\%`,
		"desk_lamp": `desk\_lamp`,
		`a\b`:       `a\\b`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
