package engine

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

// SyncReport summarises one drain pass over the intent queue.
type SyncReport struct {
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
}

// SyncPending drains unsynced intents against the remote source in arrival
// order. A rejected or unreachable intent stays queued for the next pass; a
// single failure never aborts the batch. Local attendance state is not
// touched: only the Synced flag flips, once, on remote acknowledgement.
func (e *Engine) SyncPending(ctx context.Context) (SyncReport, error) {
	var intents []models.PendingSyncIntent
	if err := e.DB.Where("synced = ?", false).
		Order("created_at ASC, id ASC").
		Find(&intents).Error; err != nil {
		return SyncReport{}, err
	}

	rep := SyncReport{Attempted: len(intents)}
	for _, it := range intents {
		if err := ctx.Err(); err != nil {
			rep.Failed = rep.Attempted - rep.Synced
			return rep, err
		}
		err := e.Remote.UpsertAttendance(ctx, it.EventID, it.RegistrationID, it.MarkedAt, it.MarkedBy)
		if err != nil {
			log.Printf("sync: intent %s not acknowledged: %v", it.ID, err)
			rep.Failed++
			continue
		}
		if err := e.DB.Model(&models.PendingSyncIntent{}).
			Where("id = ?", it.ID).
			Update("synced", true).Error; err != nil {
			// Remote took the mark but the flag write failed; the retry is
			// harmless because the remote upsert is idempotent.
			log.Printf("sync: intent %s acknowledged but flag write failed: %v", it.ID, err)
			rep.Failed++
			continue
		}
		rep.Synced++
	}
	return rep, nil
}

// PendingSyncCount counts intents still awaiting remote acknowledgement.
func (e *Engine) PendingSyncCount() (int64, error) {
	var n int64
	err := e.DB.Model(&models.PendingSyncIntent{}).
		Where("synced = ?", false).Count(&n).Error
	return n, err
}

// SweepSyncedIntents deletes synced intents whose MarkedAt is older than the
// retention window, bounding local growth. Unsynced intents are untouchable
// here regardless of age.
func (e *Engine) SweepSyncedIntents() (int64, error) {
	cutoff := e.Now().Add(-e.Retention)
	res := e.DB.Where("synced = ? AND marked_at < ?", true, cutoff).
		Delete(&models.PendingSyncIntent{})
	return res.RowsAffected, res.Error
}

// SweepExpiredCaches drops rosters (rows plus metadata) whose freshness
// window lapsed. Expired caches are already invisible to read paths; this
// reclaims the space.
func (e *Engine) SweepExpiredCaches() (int64, error) {
	var expired []models.CacheMetadata
	if err := e.DB.Where("expires_at < ?", e.Now()).Find(&expired).Error; err != nil {
		return 0, err
	}
	var n int64
	for _, meta := range expired {
		swept, err := e.sweepExpiredEvent(meta.EventID)
		if err != nil {
			return n, err
		}
		if swept {
			n++
		}
	}
	return n, nil
}

// sweepExpiredEvent deletes one event's cache, re-checking expiry inside the
// transaction: a roster reload committing after the sweep's candidate scan
// must not lose its fresh rows.
func (e *Engine) sweepExpiredEvent(eventID string) (bool, error) {
	swept := false
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("event_id = ? AND expires_at < ?", eventID, e.Now()).
			Delete(&models.CacheMetadata{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // refreshed meanwhile, leave it alone
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.CachedRegistration{}).Error; err != nil {
			return err
		}
		swept = true
		return nil
	})
	return swept, err
}
