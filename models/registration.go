package models

import "time"

// CachedRegistration is one registrant cached for one event. The QR signature
// is the unguessable token inside the registrant's pass and never changes for
// a registrant/event pair; re-caching an event replaces all of its rows.
type CachedRegistration struct {
	QRSignature    string `json:"qr_signature" gorm:"primaryKey;size:128"`
	RegistrationID string `json:"registration_id" gorm:"size:64;not null"`
	OrbitID        string `json:"orbit_id" gorm:"size:64"`
	EventID        string `json:"event_id" gorm:"index;size:64;not null"`
	FirstName      string `json:"first_name" gorm:"size:80"`
	LastName       string `json:"last_name" gorm:"size:80"`
	Email          string `json:"email" gorm:"size:120"`
	CollegeName    string `json:"college_name" gorm:"size:120"`

	// AttendanceMarked is true iff both MarkedAt and MarkedBy are set.
	AttendanceMarked bool       `json:"attendance_marked" gorm:"not null;default:false"`
	MarkedAt         *time.Time `json:"marked_at,omitempty"`
	MarkedBy         string     `json:"marked_by,omitempty" gorm:"size:64"`
}

// CacheMetadata describes one cached event roster. The cache is valid iff
// now < ExpiresAt; an expired cache is treated as absent by every read path
// except explicit inspection of this record.
type CacheMetadata struct {
	EventID            string    `json:"event_id" gorm:"primaryKey;size:64"`
	EventName          string    `json:"event_name" gorm:"size:160"`
	CachedAt           time.Time `json:"cached_at" gorm:"not null"`
	ExpiresAt          time.Time `json:"expires_at" gorm:"index;not null"`
	TotalRegistrations int       `json:"total_registrations" gorm:"not null"`
}
