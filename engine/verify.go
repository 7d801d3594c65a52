package engine

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

type ScanStatus string

const (
	ScanValid          ScanStatus = "valid"
	ScanAlreadyScanned ScanStatus = "already-scanned"
	ScanInvalid        ScanStatus = "invalid"
	ScanError          ScanStatus = "error"
)

// ScanResult classifies one decoded QR frame against the local cache.
type ScanResult struct {
	Status       ScanStatus                 `json:"status"`
	Reason       string                     `json:"reason,omitempty"`
	Registration *models.CachedRegistration `json:"registration,omitempty"`
}

// QR payload: the signature token itself, optionally wrapped as
// orbit://checkin/<token>.
const qrPrefix = "orbit://checkin/"

var signaturePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{16,128}$`)

// ParseQRPayload extracts and validates the signature from a decoded QR
// string. ok is false for malformed payloads.
func ParseQRPayload(payload string) (sig string, ok bool) {
	sig = strings.TrimSpace(payload)
	sig = strings.TrimPrefix(sig, qrPrefix)
	if !signaturePattern.MatchString(sig) {
		return "", false
	}
	return sig, true
}

// Verify resolves a decoded QR payload against the cached roster for the
// event. It is a pure read: it never touches attendance state, so the caller
// can show a confirmation screen before committing, and "already-scanned"
// can be reported without double-counting. Marking is MarkAttended's job.
func (e *Engine) Verify(payload, eventID string) ScanResult {
	sig, ok := ParseQRPayload(payload)
	if !ok {
		return ScanResult{Status: ScanInvalid, Reason: "malformed payload"}
	}

	// An expired or missing cache is treated as absent: the operator must
	// reload the roster explicitly before scanning continues.
	valid, err := e.IsCacheValid(eventID)
	if err != nil {
		return ScanResult{Status: ScanError, Reason: "cache lookup failed"}
	}
	if !valid {
		return ScanResult{Status: ScanInvalid, Reason: "no valid roster cache for event"}
	}

	var rec models.CachedRegistration
	err = e.DB.Where("qr_signature = ?", sig).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ScanResult{Status: ScanInvalid, Reason: "signature not in cached roster"}
	}
	if err != nil {
		return ScanResult{Status: ScanError, Reason: "store read failed"}
	}

	// Cross-event scans are rejected, not redirected.
	if rec.EventID != eventID {
		return ScanResult{Status: ScanInvalid, Reason: "signature belongs to another event"}
	}

	if rec.AttendanceMarked {
		return ScanResult{Status: ScanAlreadyScanned, Registration: &rec}
	}
	return ScanResult{Status: ScanValid, Registration: &rec}
}
