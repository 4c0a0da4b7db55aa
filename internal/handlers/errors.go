package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/services"
)

// clientMessages holds the response text for each service sentinel.
var clientMessages = []struct {
	err error
	msg string
}{
	{services.ErrNameRequired, "Name is required"},
	{services.ErrUsernameRequired, "Username is required"},
	{services.ErrInvalidEmail, "Please include a valid email"},
	{services.ErrPasswordTooShort, "Password must be at least 8 characters"},
	{services.ErrMissingCredentials, "Username or email and password are required"},
	{services.ErrEmailTaken, "Email already registered"},
	{services.ErrUsernameTaken, "Username already taken"},
	{services.ErrInvalidCredentials, "Invalid credentials"},
	{services.ErrUserNotFound, "User not found"},
	{services.ErrInvalidOTP, "Invalid OTP"},
	{services.ErrOTPExpired, "OTP has expired"},
	{services.ErrEmailInUse, "Email already in use"},
	{services.ErrAccountConflict, "Email or username already in use"},
	{services.ErrIncorrectPassword, "Current password is incorrect"},
	{services.ErrPasswordChangeIncomplete, "Current password and new password are both required"},
	{services.ErrNotAnImage, "Please upload an image file"},
	{services.ErrPhotoTooLarge, "Image size must be less than 5MB"},
	{services.ErrPhotoStoreDisabled, "Image storage is not configured"},
	{services.ErrMailDisabled, "Email delivery is not configured"},
}

func clientMessage(err error) string {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return err.Error()
}

// serviceError maps service sentinels onto HTTP statuses. Anything unknown is
// logged and answered with the generic fallback message.
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	switch {
	case services.IsValidation(err):
		status = fiber.StatusBadRequest
	case services.IsConflict(err):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUserNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrPhotoStoreDisabled), errors.Is(err, services.ErrMailDisabled):
		status = fiber.StatusServiceUnavailable
	default:
		slog.Error(fallback, "path", c.Path(), "error", err)
		return c.Status(status).JSON(dto.ErrorResponse{
			Error: true, Message: fallback,
		})
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error: true, Message: clientMessage(err),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
