package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/identity"
	"github.com/questchain/questchain-api/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Signup(&req)
	if err != nil {
		return serviceError(c, err, "Server error during signup")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return serviceError(c, err, "Server error during login")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.authService.GetAccount(userID)
	if err != nil {
		return serviceError(c, err, "Server error")
	}

	return c.JSON(dto.AccountResponse{
		ID:           user.ID,
		Name:         user.Name,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		ProfilePhoto: user.Photo(),
		CreatedAt:    user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    user.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return serviceError(c, err, "Error sending OTP")
	}

	return c.JSON(dto.MessageResponse{Message: "OTP sent to your email"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		return serviceError(c, err, "Error resetting password")
	}

	return c.JSON(dto.MessageResponse{Message: "Password reset successful"})
}

func (h *AuthHandler) VerifyPassword(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.VerifyPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	valid, err := h.authService.VerifyPassword(userID, req.Password)
	if err != nil {
		return serviceError(c, err, "Server error")
	}

	return c.JSON(dto.VerifyPasswordResponse{IsValid: valid})
}
