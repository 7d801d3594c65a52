package engine

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

// LoadRoster pulls the authoritative registrant list for the event and
// replaces the local cache in one transaction: old rows out, fresh rows in,
// new metadata written. A reader never observes a partial replace. On remote
// failure nothing local changes.
func (e *Engine) LoadRoster(ctx context.Context, eventID, eventName string) (int, error) {
	if eventID == "" {
		return 0, errors.New("event id required")
	}

	registrants, err := e.Remote.FetchRegistrants(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("fetch roster: %w", err)
	}

	now := e.Now()
	rows := make([]models.CachedRegistration, 0, len(registrants))
	for _, r := range registrants {
		rows = append(rows, models.CachedRegistration{
			QRSignature:    r.QRSignature,
			RegistrationID: r.RegistrationID,
			OrbitID:        r.OrbitID,
			EventID:        eventID,
			FirstName:      r.FirstName,
			LastName:       r.LastName,
			Email:          r.Email,
			CollegeName:    r.CollegeName,
		})
	}

	meta := models.CacheMetadata{
		EventID:            eventID,
		EventName:          eventName,
		CachedAt:           now,
		ExpiresAt:          now.Add(e.Freshness),
		TotalRegistrations: len(rows),
	}

	err = e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&models.CachedRegistration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.CacheMetadata{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return err
			}
		}
		return tx.Create(&meta).Error
	})
	if err != nil {
		return 0, fmt.Errorf("replace roster cache: %w", err)
	}
	return len(rows), nil
}

// IsCacheValid reports whether the event has a cached roster inside its
// freshness window.
func (e *Engine) IsCacheValid(eventID string) (bool, error) {
	var meta models.CacheMetadata
	err := e.DB.Where("event_id = ?", eventID).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return e.Now().Before(meta.ExpiresAt), nil
}

// CacheMetadata returns the metadata row for explicit inspection, even when
// the cache has expired. Returns nil when the event was never cached.
func (e *Engine) CacheMetadata(eventID string) (*models.CacheMetadata, error) {
	var meta models.CacheMetadata
	err := e.DB.Where("event_id = ?", eventID).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// ClearEventCache removes the event's registrations and metadata together.
// Pending sync intents survive: locally recorded attendance is never dropped
// before it reaches the remote source.
func (e *Engine) ClearEventCache(eventID string) error {
	return e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&models.CachedRegistration{}).Error; err != nil {
			return err
		}
		return tx.Where("event_id = ?", eventID).Delete(&models.CacheMetadata{}).Error
	})
}

// RegistrationsForEvent lists the cached roster rows for operator review.
func (e *Engine) RegistrationsForEvent(eventID string) ([]models.CachedRegistration, error) {
	var rows []models.CachedRegistration
	err := e.DB.Where("event_id = ?", eventID).
		Order("last_name ASC, first_name ASC, qr_signature ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AttendanceStats summarises the cached roster for one event.
type AttendanceStats struct {
	Total    int64 `json:"total"`
	Attended int64 `json:"attended"`
}

func (e *Engine) Stats(eventID string) (AttendanceStats, error) {
	var st AttendanceStats
	if err := e.DB.Model(&models.CachedRegistration{}).
		Where("event_id = ?", eventID).Count(&st.Total).Error; err != nil {
		return AttendanceStats{}, err
	}
	if err := e.DB.Model(&models.CachedRegistration{}).
		Where("event_id = ? AND attendance_marked = ?", eventID, true).Count(&st.Attended).Error; err != nil {
		return AttendanceStats{}, err
	}
	return st, nil
}
