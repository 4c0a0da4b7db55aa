package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPhotoURL is shown until a user uploads a profile photo.
const DefaultPhotoURL = "https://i.pinimg.com/280x280_RS/e1/08/21/e10821c74b533d465ba888ea66daa30f.jpg"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Username      string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email         string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password      string     `gorm:"not null" json:"-"`
	PhotoPublicID string     `gorm:"size:255" json:"-"`
	PhotoURL      string     `gorm:"type:text" json:"-"`
	OTPCode       string     `gorm:"size:6" json:"-"`
	OTPExpiresAt  *time.Time `json:"-"`
	Role          string     `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ProfilePhoto is the public shape of the stored photo reference.
type ProfilePhoto struct {
	PublicID string `json:"public_id,omitempty"`
	URL      string `json:"url"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.PhotoURL == "" {
		u.PhotoURL = DefaultPhotoURL
	}
	return nil
}

func (u *User) Photo() ProfilePhoto {
	url := u.PhotoURL
	if url == "" {
		url = DefaultPhotoURL
	}
	return ProfilePhoto{PublicID: u.PhotoPublicID, URL: url}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
