package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/dto"
)

// CronKeyHeader carries the shared secret sent by the external scheduler.
const CronKeyHeader = "X-Cron-Key"

// CronKey gates scheduled-job endpoints behind a shared secret. An empty secret
// rejects every request.
func CronKey(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(CronKeyHeader)
		if secret == "" || key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid API key",
			})
		}
		return c.Next()
	}
}
