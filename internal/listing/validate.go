// Package listing holds the rules a product listing must satisfy before it
// is created or edited. Clients and the API share them so an invalid form is
// rejected identically on both sides.
package listing

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ecofinds_backend/models"

	"github.com/shopspring/decimal"
)

const (
	MinTitleLen       = 3
	MaxTitleLen       = 100
	MinDescriptionLen = 10
	MaxDescriptionLen = 2000
	MaxImages         = 10
)

// DefaultMaxPrice is used when no cap is configured.
var DefaultMaxPrice = decimal.NewFromInt(100000)

// Form is a listing as entered by a seller; Price is raw user input.
type Form struct {
	Title       string
	Description string
	Category    string
	Price       string
	Condition   string
	Images      []string
	LocalPickup bool
	Shippable   bool
	Stock       int
	Location    string
}

// Errors maps a form field to its message. Empty means valid.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "invalid listing: " + strings.Join(parts, "; ")
}

// Valid is the parsed result of a form that passed Validate.
type Valid struct {
	Form
	Amount decimal.Decimal
}

// Validate checks f against the listing rules. maxPrice <= 0 uses DefaultMaxPrice.
func Validate(f Form, maxPrice decimal.Decimal) (*Valid, Errors) {
	if !maxPrice.IsPositive() {
		maxPrice = DefaultMaxPrice
	}
	errs := Errors{}

	title := strings.TrimSpace(f.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		errs["title"] = "Title is required"
	case n < MinTitleLen:
		errs["title"] = fmt.Sprintf("Title must be at least %d characters", MinTitleLen)
	case n > MaxTitleLen:
		errs["title"] = fmt.Sprintf("Title must be at most %d characters", MaxTitleLen)
	}

	desc := strings.TrimSpace(f.Description)
	switch n := utf8.RuneCountInString(desc); {
	case n == 0:
		errs["description"] = "Description is required"
	case n < MinDescriptionLen:
		errs["description"] = fmt.Sprintf("Description must be at least %d characters", MinDescriptionLen)
	case n > MaxDescriptionLen:
		errs["description"] = fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLen)
	}

	switch {
	case f.Category == "":
		errs["category"] = "Category is required"
	case !models.IsCategory(f.Category):
		errs["category"] = "Category is not supported"
	}

	switch {
	case f.Condition == "":
		errs["condition"] = "Condition is required"
	case !models.IsCondition(f.Condition):
		errs["condition"] = "Condition must be one of: " + strings.Join(models.Conditions, ", ")
	}

	amount, priceErr := parsePrice(f.Price, maxPrice)
	if priceErr != "" {
		errs["price"] = priceErr
	}

	images := make([]string, 0, len(f.Images))
	for _, img := range f.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	switch {
	case len(images) == 0:
		errs["images"] = "At least one image is required"
	case len(images) > MaxImages:
		errs["images"] = fmt.Sprintf("At most %d images are allowed", MaxImages)
	}

	if !f.LocalPickup && !f.Shippable {
		errs["delivery"] = "Choose local pickup, shipping, or both"
	}

	stock := f.Stock
	if stock == 0 {
		stock = 1
	}
	if stock < 0 {
		errs["stock"] = "Stock must be at least 1"
	}

	if len(errs) > 0 {
		return nil, errs
	}

	out := f
	out.Title = title
	out.Description = desc
	out.Images = images
	out.Stock = stock
	out.Location = strings.TrimSpace(f.Location)
	return &Valid{Form: out, Amount: amount}, nil
}

func parsePrice(raw string, maxPrice decimal.Decimal) (decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, "Price is required"
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "Price must be a valid number"
	}
	if !amount.IsPositive() {
		return decimal.Zero, "Price must be greater than 0"
	}
	if amount.GreaterThan(maxPrice) {
		return decimal.Zero, "Price cannot exceed " + maxPrice.String()
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return decimal.Zero, "Price can have at most 2 decimal places"
	}
	return amount, ""
}
