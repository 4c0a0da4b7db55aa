package notes

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/apps/quests"
	"github.com/questchain/questchain-api/internal/identity"
	"gorm.io/gorm"
)

var (
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrDateRequired = errors.New("a date is required for non-global notes")
	ErrNoteConflict = errors.New("note was saved by another request, please retry")
)

type NoteService struct {
	db *gorm.DB
}

func NewNoteService(db *gorm.DB) *NoteService {
	return &NoteService{db: db}
}

// Get returns the stored note for date, or the global note when date is empty
// or "null". found is false when nothing is stored yet.
func (s *NoteService) Get(userID uuid.UUID, date string) (note *Note, found bool, err error) {
	scope := scopeGlobal
	if date != "" && date != "null" {
		if !quests.ValidDate(date) {
			return nil, false, ErrInvalidDate
		}
		scope = date
	}

	var stored Note
	err = s.db.Scopes(identity.ForUser(userID)).Where("scope = ?", scope).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load note: %w", err)
	}
	return &stored, true, nil
}

// Save creates or overwrites the note addressed by the request.
func (s *NoteService) Save(userID uuid.UUID, req SaveNoteRequest) (*Note, error) {
	var date string
	if req.Date != nil && *req.Date != "null" {
		date = *req.Date
	}

	global := date == ""
	if req.IsGlobal != nil {
		global = *req.IsGlobal
	}

	scope := scopeGlobal
	var datePtr *string
	if !global {
		if date == "" {
			return nil, ErrDateRequired
		}
		if !quests.ValidDate(date) {
			return nil, ErrInvalidDate
		}
		scope = date
		datePtr = &date
	}

	var note *Note
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing Note
		err := tx.Scopes(identity.ForUser(userID)).Where("scope = ?", scope).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			note = &Note{
				ID:       uuid.New(),
				UserID:   userID,
				Scope:    scope,
				Content:  req.Content,
				Date:     datePtr,
				IsGlobal: global,
			}
			if err := tx.Create(note).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrNoteConflict
				}
				return fmt.Errorf("failed to create note: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to load note: %w", err)
		}

		if err := tx.Model(&existing).Update("content", req.Content).Error; err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		note = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteUserData removes every note of the user.
func (s *NoteService) DeleteUserData(tx *gorm.DB, userID uuid.UUID) error {
	if err := tx.Scopes(identity.ForUser(userID)).Delete(&Note{}).Error; err != nil {
		return fmt.Errorf("failed to delete notes: %w", err)
	}
	return nil
}
