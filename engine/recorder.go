package engine

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

// ErrRegistrationNotFound is returned when the signature has no cached row
// inside a valid freshness window.
var ErrRegistrationNotFound = errors.New("registration not found in cache")

// MarkAttended is the single mutation path for attendance. It flips the
// registrant to attended, stamps actor and time, and appends exactly one
// sync intent; record update and intent append commit together or not at
// all. A registrant already marked is a no-op: the existing record comes
// back untouched, no second intent is enqueued, and updated is false, so
// two devices auto-marking the same badge cannot double-count.
//
// An expired cache is as absent to marking as it is to verification: the
// operator must reload the roster first.
func (e *Engine) MarkAttended(qrSignature, actorID, deviceID string) (rec *models.CachedRegistration, updated bool, err error) {
	if actorID == "" {
		return nil, false, errors.New("actor id required")
	}

	var row models.CachedRegistration
	err = e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("qr_signature = ?", qrSignature).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}

		var meta models.CacheMetadata
		if err := tx.Where("event_id = ?", row.EventID).First(&meta).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if !e.Now().Before(meta.ExpiresAt) {
			return ErrRegistrationNotFound
		}

		if row.AttendanceMarked {
			return nil // idempotent: keep first marker's stamp
		}

		// Conditional write: only the caller whose UPDATE actually flips
		// the flag enqueues an intent. On a shared store two concurrent
		// marks can both read unmarked above; the loser's UPDATE matches
		// zero rows and it falls through to the no-op path.
		now := e.Now()
		res := tx.Model(&models.CachedRegistration{}).
			Where("qr_signature = ? AND attendance_marked = ?", qrSignature, false).
			Updates(map[string]any{
				"attendance_marked": true,
				"marked_at":         now,
				"marked_by":         actorID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent mark won; report their stamp.
			if err := tx.Where("qr_signature = ?", qrSignature).First(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRegistrationNotFound
				}
				return err
			}
			return nil
		}

		row.AttendanceMarked = true
		row.MarkedAt = &now
		row.MarkedBy = actorID

		intent := models.PendingSyncIntent{
			ID:             fmt.Sprintf("%s-%d", row.QRSignature, now.UnixNano()),
			RegistrationID: row.RegistrationID,
			EventID:        row.EventID,
			QRSignature:    row.QRSignature,
			MarkedAt:       now,
			MarkedBy:       actorID,
			DeviceID:       deviceID,
			Synced:         false,
		}
		if err := tx.Create(&intent).Error; err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &row, updated, nil
}
