package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/identity"
	"github.com/questchain/questchain-api/internal/services"
)

// photoFormField is the multipart field carrying the uploaded profile image.
const photoFormField = "profilePhoto"

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		return serviceError(c, err, "Server error")
	}
	return c.JSON(profile)
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		return serviceError(c, err, "Server error")
	}
	return c.JSON(resp)
}

func (h *UserHandler) UploadPhoto(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	fh, err := c.FormFile(photoFormField)
	if err != nil {
		return badRequest(c, "Please upload a file")
	}
	file, err := fh.Open()
	if err != nil {
		return badRequest(c, "Could not read uploaded file")
	}
	defer file.Close()

	result, err := h.userService.UploadPhoto(c.UserContext(), userID, services.PhotoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        file,
	})
	if err != nil {
		return serviceError(c, err, "Error uploading photo")
	}

	return c.JSON(photoResponse("Profile photo updated successfully", result))
}

func (h *UserHandler) DeletePhoto(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	result, err := h.userService.DeletePhoto(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err, "Error deleting photo")
	}

	return c.JSON(photoResponse("Profile photo deleted successfully", result))
}

func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.userService.DeleteAccount(c.UserContext(), userID); err != nil {
		return serviceError(c, err, "Error deleting account")
	}

	slog.Info("account deleted", "user_id", userID.String(), "action", "delete_account")
	return c.JSON(dto.MessageResponse{Message: "Account deleted successfully"})
}

func photoResponse(msg string, result *services.PhotoResult) dto.PhotoResponse {
	resp := dto.PhotoResponse{Message: msg, ProfilePhoto: result.Photo}
	if result.CleanupErr != nil {
		resp.Warning = "Previous photo could not be removed from storage"
	}
	return resp
}
