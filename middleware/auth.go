package middleware

import (
	"strings"

	"ecofinds_backend/models"
	"ecofinds_backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Protected verifies the bearer token and rejects revoked ones. On success
// user_id, role and the parsed claims are stored in Locals.
func Protected(secret string, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No Token Provided",
			})
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token format is invalid",
			})
		}

		return authenticate(c, secret, db, strings.TrimSpace(tokenString))
	}
}

// ProtectedQuery is Protected for websocket upgrades, which carry the token
// in the "token" query parameter.
func ProtectedQuery(secret string, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No Token Provided",
			})
		}
		return authenticate(c, secret, db, token)
	}
}

func authenticate(c *fiber.Ctx, secret string, db *gorm.DB, token string) error {
	claims, err := utils.ParseToken(secret, token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token is invalid or expired",
		})
	}

	var revoked int64
	if err := db.Model(&models.RevokedToken{}).Where("jti = ?", claims.ID).Count(&revoked).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not verify session",
		})
	}
	if revoked > 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Session has been logged out",
		})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	c.Locals("claims", claims)

	return c.Next()
}
