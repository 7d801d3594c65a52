package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Shravan4507/orbitx-checkin-engine/config"
	"github.com/Shravan4507/orbitx-checkin-engine/engine"
	"github.com/Shravan4507/orbitx-checkin-engine/handlers"
	"github.com/Shravan4507/orbitx-checkin-engine/middlewares"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo, eng *engine.Engine, cfg *config.Config) {
	auth := handlers.NewAuthHandler(cfg.JWTSecret)
	roster := handlers.NewRosterHandler(eng)
	scan := handlers.NewScanHandler(eng)
	sync := handlers.NewSyncHandler(eng)

	e.GET("/health", handlers.Health)
	e.POST("/auth/login", auth.Login)

	api := e.Group("/api", middlewares.RequireAuth(auth.JWTSecret))

	// Roster replacement and cache clearing swap whole-event state: admin only.
	api.POST("/events/:eventId/roster", roster.Load, middlewares.RequireRole("admin"))
	api.DELETE("/events/:eventId/cache", roster.Clear, middlewares.RequireRole("admin"))
	api.POST("/sync/sweep", sync.Sweep, middlewares.RequireRole("admin"))

	// Scan-station operations: admin and volunteers alike.
	api.GET("/events/:eventId/cache", roster.CacheStatus)
	api.GET("/events/:eventId/registrations", roster.Registrations)
	api.GET("/events/:eventId/stats", roster.Stats)
	api.POST("/events/:eventId/scan", scan.Verify)
	api.POST("/attendance/mark", scan.Mark)
	api.POST("/sync", sync.SyncNow)
	api.GET("/sync/pending", sync.Pending)
}
