package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LocalsUserID is the Fiber locals key holding the verified caller id.
const LocalsUserID = "user_id"

var ErrNoIdentity = errors.New("no authenticated user in context")

// GetUserID returns the caller id stored by the token verifier.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	if id, ok := c.Locals(LocalsUserID).(uuid.UUID); ok && id != uuid.Nil {
		return id, nil
	}
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, ErrNoIdentity
	}
	return SubjectFromToken(token)
}

// SubjectFromToken extracts and parses the sub claim of a verified token.
func SubjectFromToken(token *jwt.Token) (uuid.UUID, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return uuid.Nil, errors.New("missing sub claim")
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, errors.New("nil sub claim")
	}
	return id, nil
}
