package security

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyGuard rejects requests whose X-API-Key header does not match key.
// An empty key disables the check.
func APIKeyGuard(key string) fiber.Handler {
	if key == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	want := []byte(key)
	return func(c *fiber.Ctx) error {
		if subtle.ConstantTimeCompare([]byte(c.Get("X-API-Key")), want) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
