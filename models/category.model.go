package models

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;unique" json:"name"`
	Slug string `gorm:"size:100;not null;unique" json:"slug"`
}

// DefaultCategories is the fixed category set offered to sellers.
var DefaultCategories = []Category{
	{Name: "Electronics", Slug: "electronics"},
	{Name: "Clothing", Slug: "clothing"},
	{Name: "Furniture", Slug: "furniture"},
	{Name: "Books", Slug: "books"},
	{Name: "Sports", Slug: "sports"},
	{Name: "Toys", Slug: "toys"},
	{Name: "Home & Garden", Slug: "home-garden"},
	{Name: "Automotive", Slug: "automotive"},
	{Name: "Other", Slug: "other"},
}

// IsCategory reports whether slug names one of DefaultCategories.
func IsCategory(slug string) bool {
	for _, c := range DefaultCategories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}
