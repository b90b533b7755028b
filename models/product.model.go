package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ProductActive   = "active"
	ProductInactive = "inactive"
	ProductSold     = "sold"
)

// Conditions lists accepted values for Product.Condition, best first.
var Conditions = []string{"excellent", "good", "fair", "poor"}

func IsCondition(s string) bool {
	for _, c := range Conditions {
		if c == s {
			return true
		}
	}
	return false
}

func IsProductStatus(s string) bool {
	return s == ProductActive || s == ProductInactive || s == ProductSold
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SellerID    uint            `gorm:"index" json:"seller_id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Category    string          `gorm:"size:50;index" json:"category"`
	Condition   string          `gorm:"size:20" json:"condition"`
	ImageURL    string          `json:"image_url"` // primary image, Images[0]
	Images      []string        `gorm:"type:text;serializer:json" json:"images"`
	LocalPickup bool            `gorm:"default:false" json:"local_pickup"`
	Shippable   bool            `gorm:"default:false" json:"shippable"`
	Location    string          `gorm:"size:100" json:"location"`
	Stock       int             `gorm:"default:1" json:"stock"`
	Status      string          `gorm:"default:'active';size:20;index" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Seller *User `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

// MarshalJSON renders the seller as a PublicUser.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Seller *PublicUser `json:"seller,omitempty"`
	}{product(p), publicOf(p.Seller)})
}

// SellerColumns restricts preloaded sellers to public fields.
func SellerColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id, name, avatar_url, location, is_verified, created_at")
}
