package notifications

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeBroadcast = "broadcast"
	TypeQuest     = "quest"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user_created" json:"user"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Type      string     `gorm:"size:20;not null" json:"type"`
	Read      bool       `gorm:"not null" json:"read"`
	QuestID   *uuid.UUID `gorm:"type:uuid" json:"questId,omitempty"`
	CreatedAt time.Time  `gorm:"index:idx_notifications_user_created" json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// --- DTOs ---

type BroadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type BroadcastResponse struct {
	Message    string `json:"message"`
	Recipients int    `json:"recipients"`
}

type MarkAllReadResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

type JobResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Sent    int    `json:"sent"`
}
