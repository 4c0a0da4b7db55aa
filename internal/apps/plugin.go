package apps

import (
	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/services"
	"gorm.io/gorm"
)

// Plugin defines the interface every feature module must implement.
type Plugin interface {
	// ID returns the unique feature identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts feature routes on the given Fiber group.
	// The group is already prefixed with /api/<ID> and has JWT middleware applied.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// AdminPlugin extends Plugin with admin-specific route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	// The group has both JWT and Admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// ScheduledPlugin exposes endpoints triggered by an external scheduler.
type ScheduledPlugin interface {
	Plugin

	// RegisterScheduledRoutes mounts job routes on a group guarded by the
	// shared cron key instead of a user token.
	RegisterScheduledRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// DataOwner is implemented by plugins that keep per-user rows which must be
// removed together with the account.
type DataOwner interface {
	Plugin

	UserDataCleaner(db *gorm.DB, cfg *config.Config) services.UserDataCleaner
}

// Cleaners collects the account-deletion hooks of all registered plugins.
func Cleaners(plugins []Plugin, db *gorm.DB, cfg *config.Config) []services.UserDataCleaner {
	var out []services.UserDataCleaner
	for _, p := range plugins {
		if owner, ok := p.(DataOwner); ok {
			out = append(out, owner.UserDataCleaner(db, cfg))
		}
	}
	return out
}
