package notes

import (
	"time"

	"github.com/google/uuid"
)

// scopeGlobal is the scope of the single undated note of a user.
const scopeGlobal = "global"

// Note is either the user's global note or the note of one calendar date.
// Scope mirrors that choice so a unique index can enforce one note per key.
type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_notes_user_scope" json:"user"`
	Scope     string    `gorm:"size:10;not null;uniqueIndex:idx_notes_user_scope" json:"-"`
	Content   string    `gorm:"type:text" json:"content"`
	Date      *string   `gorm:"size:10" json:"date"`
	IsGlobal  bool      `gorm:"not null" json:"isGlobal"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// --- DTOs ---

type SaveNoteRequest struct {
	Content  string  `json:"content"`
	Date     *string `json:"date"`
	IsGlobal *bool   `json:"isGlobal"`
}

// EmptyNote is returned when nothing has been saved for the requested key yet.
type EmptyNote struct {
	Content  string  `json:"content"`
	Date     *string `json:"date"`
	IsGlobal bool    `json:"isGlobal"`
}
