package handlers

import (
	"errors"
	"fmt"

	"ecofinds_backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CartHandler struct {
	DB *gorm.DB
}

func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{DB: db}
}

type AddCartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// cart returns the caller's cart, creating it on first use.
func (h *CartHandler) cart(userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := h.DB.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (h *CartHandler) respond(c *fiber.Ctx, cartID uint) error {
	var items []models.CartItem
	if err := h.DB.Preload("Product").
		Where("cart_id = ?", cartID).
		Order("created_at asc").Order("id asc").
		Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch cart"})
	}
	return c.JSON(models.NewCartView(items))
}

// purchasable loads an active product userID may buy in quantity qty.
func (h *CartHandler) purchasable(c *fiber.Ctx, userID, productID uint, qty int) (*models.Product, error) {
	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch product"})
	}
	if product.Status != models.ProductActive {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Product is not available"})
	}
	if product.SellerID == userID {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot buy your own listing"})
	}
	if qty < 1 || qty > product.Stock {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Quantity must be between 1 and %d", product.Stock),
		})
	}
	return &product, nil
}

// GetCart - GET /api/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	cart, err := h.cart(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch cart"})
	}
	return h.respond(c, cart.ID)
}

// AddItem - POST /api/cart/items
// Adding a product already in the cart increases its quantity.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	var req AddCartItemRequest
	if err := c.BodyParser(&req); err != nil || req.ProductID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantity must be at least 1"})
	}

	cart, err := h.cart(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch cart"})
	}

	var item models.CartItem
	err = h.DB.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch cart"})
	}

	qty := item.Quantity + req.Quantity
	if product, err := h.purchasable(c, userID, req.ProductID, qty); product == nil {
		return err
	}

	item.CartID = cart.ID
	item.ProductID = req.ProductID
	item.Quantity = qty
	if err := h.DB.Save(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update cart"})
	}

	return h.respond(c, cart.ID)
}

// UpdateItem - PUT /api/cart/items/:productId
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	productID, ok := paramID(c, "productId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	cart, err := h.cart(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch cart"})
	}

	var item models.CartItem
	if err := h.DB.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not in cart"})
	}

	if product, err := h.purchasable(c, userID, productID, req.Quantity); product == nil {
		return err
	}

	if err := h.DB.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update cart"})
	}

	return h.respond(c, cart.ID)
}

// RemoveItem - DELETE /api/cart/items/:productId
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	productID, ok := paramID(c, "productId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	cart, err := h.cart(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch cart"})
	}

	if err := h.DB.Where("cart_id = ? AND product_id = ?", cart.ID, productID).Delete(&models.CartItem{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update cart"})
	}

	return h.respond(c, cart.ID)
}

// ClearCart - DELETE /api/cart
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return invalidSession(c)
	}

	cart, err := h.cart(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch cart"})
	}

	if err := h.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not clear cart"})
	}

	return h.respond(c, cart.ID)
}
