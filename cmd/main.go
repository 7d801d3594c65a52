package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Shravan4507/orbitx-checkin-engine/config"
	"github.com/Shravan4507/orbitx-checkin-engine/database"
	"github.com/Shravan4507/orbitx-checkin-engine/engine"
	"github.com/Shravan4507/orbitx-checkin-engine/remote"
	"github.com/Shravan4507/orbitx-checkin-engine/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	database.Connect(cfg)

	src := remote.NewHTTPSource(cfg.RemoteBaseURL, cfg.RemoteAPIKey,
		time.Duration(cfg.RemoteTimeoutSec)*time.Second)
	eng := engine.New(database.DB, src)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, eng, cfg)

	// Periodic queue drain. /api/sync remains the connectivity-restored
	// trigger; this ticker catches marks recorded while nobody asked.
	go func() {
		interval := time.Duration(cfg.SyncIntervalSec) * time.Second
		for range time.Tick(interval) {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			rep, err := eng.SyncPending(ctx)
			cancel()
			if err != nil {
				log.Printf("periodic sync: %v", err)
				continue
			}
			if rep.Attempted > 0 {
				log.Printf("periodic sync: %d/%d intents acknowledged", rep.Synced, rep.Attempted)
			}
		}
	}()

	// Retention sweep of synced intents and lapsed roster caches.
	go func() {
		for range time.Tick(time.Duration(cfg.SweepIntervalSec) * time.Second) {
			if n, err := eng.SweepSyncedIntents(); err != nil {
				log.Printf("intent sweep: %v", err)
			} else if n > 0 {
				log.Printf("intent sweep: deleted %d synced intents", n)
			}
			if n, err := eng.SweepExpiredCaches(); err != nil {
				log.Printf("cache sweep: %v", err)
			} else if n > 0 {
				log.Printf("cache sweep: dropped %d expired rosters", n)
			}
		}
	}()

	addr := ":" + cfg.AppPort
	log.Printf("scanner service listening at %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
