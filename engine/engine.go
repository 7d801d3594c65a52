// Package engine implements the offline check-in core: the cached roster,
// QR verification, attendance marking, and the durable sync queue that
// reconciles local marks with the remote source once connectivity returns.
package engine

import (
	"time"

	"gorm.io/gorm"

	"github.com/Shravan4507/orbitx-checkin-engine/remote"
)

const (
	// DefaultFreshness is how long a cached roster stays trustworthy.
	DefaultFreshness = 24 * time.Hour

	// DefaultRetention is the minimum age (by MarkedAt) before a synced
	// intent may be swept. Unsynced intents are never swept.
	DefaultRetention = time.Hour
)

type Engine struct {
	DB     *gorm.DB
	Remote remote.RegistrationSource

	Freshness time.Duration
	Retention time.Duration

	// Now is the clock; tests pin it.
	Now func() time.Time
}

func New(db *gorm.DB, src remote.RegistrationSource) *Engine {
	return &Engine{
		DB:        db,
		Remote:    src,
		Freshness: DefaultFreshness,
		Retention: DefaultRetention,
		Now:       time.Now,
	}
}
