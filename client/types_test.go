package client_test

import (
	"testing"

	"ecofinds_backend/client"

	"github.com/shopspring/decimal"
)

// Uses only exported client names so an outside module can build filters and forms.
func TestExportedFormsAndFilters(t *testing.T) {
	f := client.DefaultFilter()
	if f.Sort != client.SortRelevance {
		t.Errorf("default sort = %q", f.Sort)
	}
	f.Sort = client.SortPriceLow
	f.Category = "furniture"
	var _ client.Filter = f

	form := client.ListingForm{
		Title:       "Vintage Chair",
		Description: "Solid oak, lightly used..",
		Category:    "furniture",
		Price:       "150.00",
		Condition:   "good",
		Images:      []string{"chair.jpg"},
		LocalPickup: true,
	}
	if errs := client.ValidateListing(form, decimal.Zero); errs != nil {
		t.Fatalf("valid form rejected: %v", errs)
	}

	form.Price = "abc"
	errs := client.ValidateListing(form, decimal.Zero)
	if errs["price"] != "Price must be a valid number" {
		t.Errorf("errs = %v", errs)
	}
	form.Price = "200"
	if errs := client.ValidateListing(form, decimal.NewFromInt(100)); errs["price"] == "" {
		t.Errorf("price over the cap accepted: %v", errs)
	}
}
