package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func IsOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// PaymentMethods accepted at checkout.
var PaymentMethods = []string{"card", "cash_on_delivery", "wallet"}

// Order is a purchase record. Product fields are a snapshot taken at checkout.
type Order struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BuyerID  uint `gorm:"index;not null" json:"buyer_id"`
	SellerID uint `gorm:"index;not null" json:"seller_id"`

	ProductID    uint            `gorm:"index;not null" json:"product_id"`
	ProductTitle string          `gorm:"size:255;not null" json:"product_title"`
	ProductImage string          `json:"product_image"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Total        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	Status         OrderStatus `gorm:"type:varchar(20);not null;default:'processing';index" json:"status"`
	PaymentMethod  string      `gorm:"size:30;not null" json:"payment_method"`
	TrackingNumber string      `gorm:"size:100" json:"tracking_number"`

	OrderedAt   time.Time  `gorm:"not null" json:"ordered_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Buyer  *User `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Seller *User `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

// MarshalJSON renders buyer and seller as PublicUser.
func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		Buyer  *PublicUser `json:"buyer,omitempty"`
		Seller *PublicUser `json:"seller,omitempty"`
	}{order(o), publicOf(o.Buyer), publicOf(o.Seller)})
}
