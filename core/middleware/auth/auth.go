package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Config holds settings for the API key middleware.
type Config struct {
	// ApiKey is the expected key. An empty key disables authentication,
	// which is only sensible in local development.
	ApiKey string
}

// New returns middleware that validates the X-Api-Key header against the
// configured key using a constant-time comparison.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		provided := c.Get("X-Api-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing api key",
			})
		}
		return c.Next()
	}
}
