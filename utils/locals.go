package utils

import (
	"github.com/gofiber/fiber/v2"
)

// CurrentUserID reads the user id stored by the auth middleware.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	switch v := c.Locals("user_id").(type) {
	case uint:
		return v, v != 0
	case float64:
		return uint(v), v != 0
	default:
		return 0, false
	}
}
