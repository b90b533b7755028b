package handlers

import (
	"ecofinds_backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// GetProfile - GET /api/users/:id
// Public seller profile with their active listings.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	products := []models.Product{}
	if err := h.DB.Where("seller_id = ? AND status = ?", user.ID, models.ProductActive).
		Order("created_at desc").
		Limit(24).
		Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch listings"})
	}

	var active, sold int64
	h.DB.Model(&models.Product{}).Where("seller_id = ? AND status = ?", user.ID, models.ProductActive).Count(&active)
	h.DB.Model(&models.Order{}).Where("seller_id = ? AND status <> ?", user.ID, models.OrderCancelled).Count(&sold)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":            user.Public(),
			"active_listings": active,
			"completed_sales": sold,
			"products":        products,
		},
	})
}
