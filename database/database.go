package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Shravan4507/orbitx-checkin-engine/config"
	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

var DB *gorm.DB

// Connect opens the local store and migrates the schema. The handle is a
// process-wide singleton: opened once, never closed during process lifetime.
func Connect(cfg *config.Config) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.StoreDriver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	default:
		db, err = gorm.Open(sqlite.Open(cfg.StorePath), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("failed to open local store: %v", err)
	}
	DB = db

	if err := DB.AutoMigrate(
		&models.CachedRegistration{},
		&models.CacheMetadata{},
		&models.PendingSyncIntent{},
		&models.Operator{},
	); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
}

// Get returns the shared handle, connecting lazily on first use. Safe to
// call repeatedly.
func Get() *gorm.DB {
	if DB == nil {
		Connect(config.Load())
	}
	return DB
}
