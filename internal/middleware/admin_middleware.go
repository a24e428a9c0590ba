package middleware

import (
	"github.com/gofiber/fiber/v2"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/utils/jwt"
)

// RequireAdmin gates a route on an admin role row for the caller. Runs
// after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		var role model.UserRole
		if err := database.DB.Where("user_id = ? AND role = ?", claims.UserID, model.RoleAdmin).
			First(&role).Error; err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: Admin privileges required",
			})
		}

		return c.Next()
	}
}
