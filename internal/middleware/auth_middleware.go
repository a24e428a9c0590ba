package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"cteskills_backend/pkg/utils/jwt"
)

// AuthMiddleware validates the bearer token and stashes the claims in
// c.Locals("user").
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No authorization header provided",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := jwt.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

// OptionalAuthMiddleware sets claims when a valid token is present but
// lets anonymous requests through. Used on the public video detail route
// so gating can consider the caller's subscription.
func OptionalAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if claims, err := jwt.ValidateToken(token); err == nil {
				c.Locals("user", claims)
			}
		}
		return c.Next()
	}
}
