package dto

import "github.com/questchain/questchain-api/internal/models"

type ProfileResponse struct {
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Username     string              `json:"username"`
	ProfilePhoto models.ProfilePhoto `json:"profilePhoto"`
}

type UpdateProfileRequest struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UpdateProfileResponse struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type PhotoResponse struct {
	Message      string              `json:"message"`
	ProfilePhoto models.ProfilePhoto `json:"profilePhoto"`
	Warning      string              `json:"warning,omitempty"`
}
