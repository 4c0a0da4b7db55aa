package quests

import (
	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/services"
	"gorm.io/gorm"
)

type QuestsPlugin struct{}

func New() *QuestsPlugin {
	return &QuestsPlugin{}
}

func (p *QuestsPlugin) ID() string { return "quests" }

func (p *QuestsPlugin) Models() []interface{} {
	return []interface{}{
		&QuestDay{},
	}
}

func (p *QuestsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewQuestService(db, cfg.TZOffset)
	handler := NewQuestHandler(svc)

	// Statistics are registered before /:date so they are not captured as dates.
	router.Get("/regularity", handler.Regularity)
	router.Get("/activity-heatmap", handler.Heatmap)

	router.Post("/", handler.Create)
	router.Get("/:date", handler.GetDay)
	router.Put("/:date", handler.ReplaceDay)
	router.Put("/:date/reorder", handler.Reorder)
	router.Put("/:date/:questId", handler.UpdateItem)
	router.Delete("/:date/:questId", handler.DeleteItem)
}

func (p *QuestsPlugin) UserDataCleaner(db *gorm.DB, cfg *config.Config) services.UserDataCleaner {
	return NewQuestService(db, cfg.TZOffset)
}
