package middleware

import (
	"viadocs/backend/config"
	"viadocs/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, _, err := utils.ExtractIdentity(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// AdminMiddleware gates admin endpoints on the token's role claim, not on
// how the token was issued.
func AdminMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, err := utils.ExtractIdentity(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		if role != "admin" {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}

		return c.Next()
	}
}
