package client

import (
	"ecofinds_backend/internal/catalog"
	"ecofinds_backend/internal/listing"

	"github.com/shopspring/decimal"
)

// Filter is the catalog filter panel state passed to Feed.Search.
type Filter = catalog.Filter

// ListingForm is the raw add/edit listing form passed to Listings.Create and Update.
type ListingForm = listing.Form

// ListingErrors maps form fields to messages.
type ListingErrors = listing.Errors

const (
	SortRelevance = catalog.SortRelevance
	SortNewest    = catalog.SortNewest
	SortOldest    = catalog.SortOldest
	SortPriceLow  = catalog.SortPriceLow
	SortPriceHigh = catalog.SortPriceHigh
)

// DefaultFilter is the untouched filter panel.
func DefaultFilter() Filter { return catalog.DefaultFilter() }

// ValidateListing checks f the way the server does, with maxPrice zero
// meaning the default cap. It returns nil when f is valid.
func ValidateListing(f ListingForm, maxPrice decimal.Decimal) ListingErrors {
	_, errs := listing.Validate(f, maxPrice)
	if len(errs) == 0 {
		return nil
	}
	return errs
}
