package notes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/services"
	"gorm.io/gorm"
)

type NotesPlugin struct{}

func New() *NotesPlugin {
	return &NotesPlugin{}
}

func (p *NotesPlugin) ID() string { return "notes" }

func (p *NotesPlugin) Models() []interface{} {
	return []interface{}{
		&Note{},
	}
}

func (p *NotesPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewNoteHandler(NewNoteService(db))

	router.Get("/", handler.Get)
	router.Post("/", handler.Save)
}

func (p *NotesPlugin) UserDataCleaner(db *gorm.DB, cfg *config.Config) services.UserDataCleaner {
	return NewNoteService(db)
}
