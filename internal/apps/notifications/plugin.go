package notifications

import (
	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/services"
	"gorm.io/gorm"
)

type NotificationsPlugin struct{}

func New() *NotificationsPlugin {
	return &NotificationsPlugin{}
}

func (p *NotificationsPlugin) ID() string { return "notifications" }

func (p *NotificationsPlugin) Models() []interface{} {
	return []interface{}{
		&Notification{},
	}
}

func (p *NotificationsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewNotificationHandler(NewNotificationService(db, cfg.TZOffset))

	// mark-all-read before /:id/read
	router.Get("/", handler.List)
	router.Put("/mark-all-read", handler.MarkAllRead)
	router.Put("/:id/read", handler.MarkRead)
}

func (p *NotificationsPlugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewNotificationHandler(NewNotificationService(db, cfg.TZOffset))

	router.Post("/notifications/broadcast", handler.Broadcast)
}

func (p *NotificationsPlugin) RegisterScheduledRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewNotificationHandler(NewNotificationService(db, cfg.TZOffset))

	router.Get("/send-evening-reminders", handler.EveningReminders)
	router.Post("/send-evening-reminders", handler.EveningReminders)
	router.Get("/send-daily-summary", handler.DailySummary)
	router.Post("/send-daily-summary", handler.DailySummary)
}

func (p *NotificationsPlugin) UserDataCleaner(db *gorm.DB, cfg *config.Config) services.UserDataCleaner {
	return NewNotificationService(db, cfg.TZOffset)
}
