package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a private thread between a buyer and the seller of one listing.
type Conversation struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ProductID uint `gorm:"uniqueIndex:idx_conversation_product_buyer;not null" json:"product_id"`
	BuyerID   uint `gorm:"uniqueIndex:idx_conversation_product_buyer;not null" json:"buyer_id"`
	SellerID  uint `gorm:"index;not null" json:"seller_id"`

	// Cached preview for conversation lists
	LastMessageContent string     `gorm:"type:text" json:"last_message"`
	LastMessageAt      *time.Time `json:"last_message_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID uint) uint {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

func (c Conversation) HasParticipant(userID uint) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

type Message struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ConversationID uint `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint `gorm:"index;not null" json:"sender_id"`

	Content string `gorm:"type:text;not null" json:"content"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}
