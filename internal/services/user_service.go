package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/models"
	"gorm.io/gorm"
)

const MaxPhotoSize = 5 * 1024 * 1024

var (
	ErrEmailInUse               = errors.New("email already in use")
	ErrAccountConflict          = errors.New("email or username already in use")
	ErrIncorrectPassword        = errors.New("current password is incorrect")
	ErrPasswordChangeIncomplete = errors.New("current password and new password are both required")
	ErrNotAnImage               = errors.New("please upload an image file")
	ErrPhotoTooLarge            = errors.New("image size must be less than 5MB")
)

// UserDataCleaner removes feature data owned by a user inside the account-deletion transaction.
type UserDataCleaner interface {
	DeleteUserData(tx *gorm.DB, userID uuid.UUID) error
}

// PhotoResult separates a hard photo failure (returned as error) from a failed
// best-effort cleanup of the previous image.
type PhotoResult struct {
	Photo      models.ProfilePhoto
	CleanupErr error
}

// PhotoUpload describes an incoming image.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UserService struct {
	db       *gorm.DB
	photos   PhotoStore
	cleaners []UserDataCleaner
}

func NewUserService(db *gorm.DB, photos PhotoStore, cleaners ...UserDataCleaner) *UserService {
	return &UserService{db: db, photos: photos, cleaners: cleaners}
}

func (s *UserService) GetProfile(userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.load(s.db, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{
		Name:         user.Name,
		Email:        user.Email,
		Username:     user.Username,
		ProfilePhoto: user.Photo(),
	}, nil
}

// UpdateProfile applies name/username/email changes and an optional password change.
// Uniqueness is checked against other users first; a racing writer is caught by the
// unique index and reported the same way.
func (s *UserService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error) {
	user, err := s.load(s.db, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if !validEmail(email) {
			return nil, ErrInvalidEmail
		}
		taken, err := s.exists("email = ? AND id <> ?", email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailInUse
		}
		updates["email"] = email
	}

	if username := strings.TrimSpace(req.Username); username != "" && username != user.Username {
		taken, err := s.exists("username = ? AND id <> ?", username, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		updates["username"] = username
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}

	if req.NewPassword != "" || req.CurrentPassword != "" {
		if req.NewPassword == "" || req.CurrentPassword == "" {
			return nil, ErrPasswordChangeIncomplete
		}
		if !checkPassword(user.Password, req.CurrentPassword) {
			return nil, ErrIncorrectPassword
		}
		if len(req.NewPassword) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := hashPassword(req.NewPassword)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrAccountConflict
			}
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	updated, err := s.load(s.db, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UpdateProfileResponse{
		Name:     updated.Name,
		Email:    updated.Email,
		Username: updated.Username,
	}, nil
}

// UploadPhoto stores a new profile image, removing the previous one best-effort.
func (s *UserService) UploadPhoto(ctx context.Context, userID uuid.UUID, upload PhotoUpload) (*PhotoResult, error) {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, ErrNotAnImage
	}
	if upload.Size > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}

	user, err := s.load(s.db, userID)
	if err != nil {
		return nil, err
	}

	result := &PhotoResult{}
	if user.PhotoPublicID != "" {
		result.CleanupErr = s.deletePhoto(ctx, user)
	}

	photo, err := s.photos.Upload(ctx, user.ID, upload.Filename, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"photo_public_id": photo.PublicID,
		"photo_url":       photo.URL,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to save photo reference: %w", err)
	}

	result.Photo = photo
	return result, nil
}

// DeletePhoto resets the profile photo to the default avatar.
func (s *UserService) DeletePhoto(ctx context.Context, userID uuid.UUID) (*PhotoResult, error) {
	user, err := s.load(s.db, userID)
	if err != nil {
		return nil, err
	}

	result := &PhotoResult{}
	if user.PhotoPublicID != "" {
		result.CleanupErr = s.deletePhoto(ctx, user)
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"photo_public_id": "",
		"photo_url":       models.DefaultPhotoURL,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to reset photo: %w", err)
	}

	result.Photo = models.ProfilePhoto{URL: models.DefaultPhotoURL}
	return result, nil
}

// DeleteAccount removes the user and all feature data in one transaction, then
// drops the stored photo best-effort.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	var photoID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.load(tx, userID)
		if err != nil {
			return err
		}
		photoID = user.PhotoPublicID

		for _, cleaner := range s.cleaners {
			if err := cleaner.DeleteUserData(tx, userID); err != nil {
				return err
			}
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return err
	}

	if photoID != "" {
		if err := s.photos.Delete(ctx, photoID); err != nil {
			slog.Warn("failed to delete photo of removed account", "user_id", userID.String(), "error", err)
		}
	}
	return nil
}

func (s *UserService) deletePhoto(ctx context.Context, user *models.User) error {
	err := s.photos.Delete(ctx, user.PhotoPublicID)
	if err != nil {
		slog.Warn("failed to delete previous profile photo",
			"user_id", user.ID.String(), "action", "photo_cleanup", "error", err)
	}
	return err
}

func (s *UserService) load(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *UserService) exists(query string, args ...interface{}) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check uniqueness: %w", err)
	}
	return count > 0, nil
}
