package handlers

import (
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"ecofinds_backend/internal/ws"
	"ecofinds_backend/models"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxMessageLen = 2000

var (
	errConversationNotFound = errors.New("conversation not found")
	errNotParticipant       = errors.New("you are not part of this conversation")
	errEmptyMessage         = errors.New("message cannot be empty")
	errMessageTooLong       = errors.New("message is too long")
)

type ChatHandler struct {
	Hub *ws.Hub
	DB  *gorm.DB
}

func NewChatHandler(hub *ws.Hub, db *gorm.DB) *ChatHandler {
	return &ChatHandler{
		Hub: hub,
		DB:  db,
	}
}

// WebSocketUpgradeMiddleware ensures the client is trying to upgrade to WebSocket
func (h *ChatHandler) WebSocketUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the websocket handler function
func (h *ChatHandler) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		// Retrieve user_id from Locals (set by auth middleware)
		userID, ok := c.Locals("user_id").(uint)
		if !ok || userID == 0 {
			log.Println("Invalid or missing User ID in WebSocket connection")
			c.Close()
			return
		}

		client := ws.NewClient(h.Hub, c, userID, h.inbound)
		client.Hub.Register <- client

		// Start Pumps
		go client.WritePump()
		client.ReadPump()
	})
}

func (h *ChatHandler) inbound(userID uint, in ws.Inbound) error {
	if in.Type != "message" {
		return errors.New("unsupported frame type")
	}
	_, err := h.send(userID, in.ConversationID, in.Content)
	return err
}

// send stores a message from senderID and pushes it to both participants.
func (h *ChatHandler) send(senderID, conversationID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return nil, errMessageTooLong
	}

	var conv models.Conversation
	if err := h.DB.First(&conv, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errConversationNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, errNotParticipant
	}

	msg := models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&conv).Updates(map[string]interface{}{
			"last_message_content": content,
			"last_message_at":      msg.CreatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if h.Hub != nil {
		h.Hub.Notify(conv.Other(senderID), "message", msg)
		h.Hub.Notify(senderID, "message", msg)
	}
	return &msg, nil
}

type StartConversationRequest struct {
	ProductID uint `json:"product_id"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

// StartConversation - POST /api/conversations
// Returns the caller's thread about a product, creating it on first contact.
func (h *ChatHandler) StartConversation(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	var req StartConversationRequest
	if err := c.BodyParser(&req); err != nil || req.ProductID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	if product.SellerID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot chat with yourself"})
	}

	var conv models.Conversation
	err := h.DB.Where("product_id = ? AND buyer_id = ?", product.ID, userID).First(&conv).Error
	if err == nil {
		return c.JSON(fiber.Map{"data": conv, "created": false})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch conversation"})
	}

	conv = models.Conversation{ProductID: product.ID, BuyerID: userID, SellerID: product.SellerID}
	if err := h.DB.Create(&conv).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create conversation"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":    conv,
		"created": true,
	})
}

// GetMyConversations - GET /api/conversations
func (h *ChatHandler) GetMyConversations(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	type ConversationResult struct {
		ID                 uint       `json:"id"`
		ProductID          uint       `json:"product_id"`
		ProductTitle       string     `json:"product_title"`
		ProductImage       string     `json:"product_image"`
		LastMessageContent string     `json:"last_message"`
		LastMessageAt      *time.Time `json:"last_message_at"`
		OtherUserID        uint       `json:"other_user_id"`
		OtherName          string     `json:"other_name"`
		OtherAvatarURL     string     `json:"other_avatar_url"`
		OtherOnline        bool       `json:"other_online" gorm:"-"`
		UnreadCount        int64      `json:"unread_count"`
	}

	results := []ConversationResult{}

	// The other participant is whichever of buyer/seller is not the caller
	query := `
		SELECT
			cv.id, cv.product_id, p.title AS product_title, p.image_url AS product_image,
			cv.last_message_content, cv.last_message_at,
			u.id AS other_user_id, u.name AS other_name, u.avatar_url AS other_avatar_url,
			(
				SELECT COUNT(*)
				FROM messages m
				WHERE m.conversation_id = cv.id
				AND m.is_read = false
				AND m.sender_id != ?
			) AS unread_count
		FROM conversations cv
		LEFT JOIN products p ON p.id = cv.product_id
		LEFT JOIN users u ON u.id = CASE WHEN cv.buyer_id = ? THEN cv.seller_id ELSE cv.buyer_id END
		WHERE (cv.buyer_id = ? OR cv.seller_id = ?) AND cv.deleted_at IS NULL
		ORDER BY cv.last_message_at IS NULL, cv.last_message_at DESC, cv.id DESC
	`

	if err := h.DB.Raw(query, userID, userID, userID, userID).Scan(&results).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch conversations"})
	}

	if h.Hub != nil {
		for i := range results {
			results[i].OtherOnline = h.Hub.IsUserOnline(results[i].OtherUserID)
		}
	}

	return c.JSON(fiber.Map{"data": results})
}

func (h *ChatHandler) participant(c *fiber.Ctx, userID uint) (*models.Conversation, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var conv models.Conversation
	if err := h.DB.First(&conv, id).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
	}
	if !conv.HasParticipant(userID) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not part of this conversation"})
	}
	return &conv, nil
}

// GetMessages - GET /api/conversations/:id/messages
// Newest first; messages from the other participant are marked read.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	conv, err := h.participant(c, userID)
	if conv == nil {
		return err
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	messages := []models.Message{}
	if err := h.DB.Where("conversation_id = ?", conv.ID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}

	if err := h.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conv.ID, userID, false).
		Update("is_read", true).Error; err != nil {
		log.Printf("Failed to mark messages read: %v", err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// SendMessage - POST /api/conversations/:id/messages
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	msg, err := h.send(userID, id, req.Content)
	switch {
	case errors.Is(err, errEmptyMessage), errors.Is(err, errMessageTooLong):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, errConversationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
	case errors.Is(err, errNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not send message"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": msg})
}
