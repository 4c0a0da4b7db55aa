package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/identity"
)

// JWTProtected verifies the bearer token and stores the caller id in locals.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, tokenErrorMessage(err))
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok || token == nil {
				return unauthorized(c, "Token is not valid")
			}
			userID, err := identity.SubjectFromToken(token)
			if err != nil {
				return unauthorized(c, "Invalid token structure")
			}
			c.Locals(identity.LocalsUserID, userID)
			return c.Next()
		},
	})
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		return "No token, authorization denied."
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	default:
		return "Token is not valid"
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
