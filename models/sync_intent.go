package models

import "time"

// PendingSyncIntent is a durable record of one local attendance mark awaiting
// confirmation by the remote source. Rows are append-only: nothing but the
// Synced flag ever changes, and it flips false→true exactly once. Unsynced
// rows are never deleted; synced rows are removed by the age-based sweep.
type PendingSyncIntent struct {
	// ID is derived from the QR signature plus the mark timestamp, so it is
	// unique even if the same registrant were ever re-marked.
	ID             string    `json:"id" gorm:"primaryKey;size:160"`
	RegistrationID string    `json:"registration_id" gorm:"size:64;not null"`
	EventID        string    `json:"event_id" gorm:"index;size:64;not null"`
	QRSignature    string    `json:"qr_signature" gorm:"size:128;not null"`
	MarkedAt       time.Time `json:"marked_at" gorm:"not null"`
	MarkedBy       string    `json:"marked_by" gorm:"size:64;not null"`
	DeviceID       string    `json:"device_id" gorm:"size:64"`
	Synced         bool      `json:"synced" gorm:"index;not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
}
