package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/questchain/questchain-api/internal/apps"
	"github.com/questchain/questchain-api/internal/config"
	"github.com/questchain/questchain-api/internal/handlers"
	"github.com/questchain/questchain-api/internal/metrics"
	"github.com/questchain/questchain-api/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
	plugins []apps.Plugin,
) {
	// Prometheus scrape endpoint stays outside the rate-limited API
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Get("/user", middleware.JWTProtected(cfg), authHandler.GetUser)
	auth.Post("/verify-password", middleware.JWTProtected(cfg), authHandler.VerifyPassword)

	users := api.Group("/users", middleware.JWTProtected(cfg))
	users.Get("/me", userHandler.GetMe)
	users.Put("/me", userHandler.UpdateMe)
	users.Delete("/me", userHandler.DeleteMe)
	users.Post("/upload-photo", userHandler.UploadPhoto)
	users.Delete("/delete-photo", userHandler.DeletePhoto)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))

	// Scheduler endpoints authenticate with the shared cron key, not a user token
	cron := api.Group("/cron", middleware.CronKey(cfg.CronSecretKey))

	// Each plugin gets its own protected group under /api/<id> so the JWT
	// middleware never runs for public or cron routes.
	for _, p := range plugins {
		p.RegisterRoutes(api.Group("/"+p.ID(), middleware.JWTProtected(cfg)), db, cfg)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, db, cfg)
		}
		if sp, ok := p.(apps.ScheduledPlugin); ok {
			sp.RegisterScheduledRoutes(cron, db, cfg)
		}
	}
}
