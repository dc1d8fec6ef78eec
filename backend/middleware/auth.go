package middleware

import (
	"quizgame/backend/config"
	"quizgame/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware verifies the bearer token the gateway forwards and stores
// the authenticated user id in request locals under "userID".
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals("userID", userID)
		return c.Next()
	}
}

// UserIDFromContext returns the user id set by AuthMiddleware.
func UserIDFromContext(c *fiber.Ctx) string {
	userID, _ := c.Locals("userID").(string)
	return userID
}
