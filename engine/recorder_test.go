package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

func TestMarkAttendedStampsAndEnqueues(t *testing.T) {
	eng, src, _ := newTestEngine(t)
	regs := mustLoad(t, eng, src, "E1", 1)

	rec, updated, err := eng.MarkAttended(regs[0].QRSignature, "vol7", "dev-1")
	if err != nil || !updated {
		t.Fatalf("MarkAttended = (%v, %v)", updated, err)
	}
	if !rec.AttendanceMarked || rec.MarkedBy != "vol7" {
		t.Fatalf("record not stamped: %+v", rec)
	}
	if rec.MarkedAt == nil || !rec.MarkedAt.Equal(testEpoch) {
		t.Fatalf("MarkedAt = %v, want clock time", rec.MarkedAt)
	}

	var intents []models.PendingSyncIntent
	if err := eng.DB.Find(&intents).Error; err != nil {
		t.Fatalf("load intents: %v", err)
	}
	if len(intents) != 1 {
		t.Fatalf("intent count = %d, want 1", len(intents))
	}
	it := intents[0]
	if it.Synced {
		t.Error("fresh intent already synced")
	}
	if it.RegistrationID != regs[0].RegistrationID || it.EventID != "E1" ||
		it.QRSignature != regs[0].QRSignature || it.MarkedBy != "vol7" || it.DeviceID != "dev-1" {
		t.Errorf("intent fields wrong: %+v", it)
	}
	if !it.MarkedAt.Equal(testEpoch) {
		t.Errorf("intent MarkedAt = %v, want clock time", it.MarkedAt)
	}
}

// Two marks, same or different actor, yield exactly one intent and the first
// successful call's stamp.
func TestMarkAttendedIdempotent(t *testing.T) {
	eng, src, clock := newTestEngine(t)
	regs := mustLoad(t, eng, src, "E1", 1)

	if _, _, err := eng.MarkAttended(regs[0].QRSignature, "admin1", "dev-a"); err != nil {
		t.Fatalf("first mark: %v", err)
	}

	*clock = clock.Add(5 * time.Minute)

	rec, updated, err := eng.MarkAttended(regs[0].QRSignature, "admin2", "dev-b")
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if updated {
		t.Error("second mark reported an update")
	}
	if rec.MarkedBy != "admin1" || !rec.MarkedAt.Equal(testEpoch) {
		t.Errorf("second mark changed the stamp: by=%q at=%v", rec.MarkedBy, rec.MarkedAt)
	}

	var n int64
	eng.DB.Model(&models.PendingSyncIntent{}).Count(&n)
	if n != 1 {
		t.Fatalf("intent count = %d, want 1", n)
	}
}

func TestMarkAttendedUnknownSignature(t *testing.T) {
	eng, src, _ := newTestEngine(t)
	mustLoad(t, eng, src, "E1", 1)

	_, _, err := eng.MarkAttended("sig_X_unknown_0123456789abcdef", "admin1", "")
	if !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("err = %v, want ErrRegistrationNotFound", err)
	}
	if n, _ := eng.PendingSyncCount(); n != 0 {
		t.Fatalf("failed mark enqueued an intent")
	}
}

// Marking reads the cache too: past the freshness window the registrant is
// as absent to mark as to verify, even without a preceding scan.
func TestMarkAttendedExpiredCache(t *testing.T) {
	eng, src, clock := newTestEngine(t)
	regs := mustLoad(t, eng, src, "E1", 1)

	*clock = clock.Add(DefaultFreshness + time.Minute)

	_, _, err := eng.MarkAttended(regs[0].QRSignature, "admin1", "dev-a")
	if !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("mark on expired cache = %v, want ErrRegistrationNotFound", err)
	}

	var rec models.CachedRegistration
	if err := eng.DB.Where("qr_signature = ?", regs[0].QRSignature).First(&rec).Error; err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.AttendanceMarked || rec.MarkedAt != nil || rec.MarkedBy != "" {
		t.Fatalf("expired-cache mark mutated the row: %+v", rec)
	}
	if n, _ := eng.PendingSyncCount(); n != 0 {
		t.Fatalf("expired-cache mark enqueued an intent")
	}
}

// When another station's mark has already committed (its intent lives in
// that station's own queue), this station must not enqueue a second intent
// or overwrite the stamp. The flag flip is a conditional update, so the
// losing writer falls through here even if both read unmarked.
func TestMarkAttendedOtherStationWon(t *testing.T) {
	eng, src, _ := newTestEngine(t)
	regs := mustLoad(t, eng, src, "E1", 1)

	stamp := testEpoch.Add(-time.Minute)
	if err := eng.DB.Model(&models.CachedRegistration{}).
		Where("qr_signature = ?", regs[0].QRSignature).
		Updates(map[string]any{
			"attendance_marked": true,
			"marked_at":         stamp,
			"marked_by":         "vol9",
		}).Error; err != nil {
		t.Fatalf("seed winning mark: %v", err)
	}

	rec, updated, err := eng.MarkAttended(regs[0].QRSignature, "admin1", "dev-a")
	if err != nil {
		t.Fatalf("MarkAttended: %v", err)
	}
	if updated {
		t.Error("losing mark reported an update")
	}
	if rec.MarkedBy != "vol9" || rec.MarkedAt == nil || !rec.MarkedAt.Equal(stamp) {
		t.Errorf("losing mark clobbered the winner's stamp: by=%q at=%v", rec.MarkedBy, rec.MarkedAt)
	}
	if n, _ := eng.PendingSyncCount(); n != 0 {
		t.Fatalf("losing mark enqueued an intent")
	}
}

func TestMarkAttendedRequiresActor(t *testing.T) {
	eng, src, _ := newTestEngine(t)
	regs := mustLoad(t, eng, src, "E1", 1)

	if _, _, err := eng.MarkAttended(regs[0].QRSignature, "", ""); err == nil {
		t.Fatal("mark without actor succeeded")
	}
}
