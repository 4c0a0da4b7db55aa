package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/identity"
	"github.com/questchain/questchain-api/internal/models"
	"gorm.io/gorm"
)

// AdminRequired admits callers whose stored role is admin, or whose email is listed
// in ADMIN_EMAILS. It must run after JWTProtected.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		userID, err := identity.GetUserID(c)
		if err != nil {
			return unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.Select("id", "email", "role").First(&user, "id = ?", userID).Error; err != nil {
			return unauthorized(c, "Unauthorized")
		}

		if user.IsAdmin() || contains(adminEmails, strings.ToLower(user.Email)) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Not authorized as admin",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
