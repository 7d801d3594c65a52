package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

func markAll(t *testing.T, eng *Engine, clock *time.Time, sigs []string, actor string) {
	t.Helper()
	for _, sig := range sigs {
		if _, _, err := eng.MarkAttended(sig, actor, "dev-1"); err != nil {
			t.Fatalf("MarkAttended(%s): %v", sig, err)
		}
		*clock = clock.Add(time.Second)
	}
}

func TestSyncPendingDrainsQueue(t *testing.T) {
	eng, src, clock := newTestEngine(t)
	regs := mustLoad(t, eng, src, "E1", 3)

	sigs := make([]string, len(regs))
	for i, r := range regs {
		sigs[i] = r.QRSignature
	}
	markAll(t, eng, clock, sigs, "admin1")

	rep, err := eng.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("SyncPending: %v", err)
	}
	if rep.Synced != 3 || rep.Failed != 0 || rep.Attempted != 3 {
		t.Fatalf("report = %+v, want 3/3 synced", rep)
	}
	if n, _ := eng.PendingSyncCount(); n != 0 {
		t.Fatalf("pending after full drain = %d", n)
	}

	// Arrival order and first-marker attribution: the pushes carry the
	// original mark stamps in mark order, never the push time.
	if len(src.upserts) != 3 {
		t.Fatalf("remote saw %d upserts", len(src.upserts))
	}
	for i, up := range src.upserts {
		if up.RegistrationID != regs[i].RegistrationID {
			t.Errorf("push %d = %s, want %s (arrival order)", i, up.RegistrationID, regs[i].RegistrationID)
		}
		want := testEpoch.Add(time.Duration(i) * time.Second)
		if !up.MarkedAt.Equal(want) || up.MarkedBy != "admin1" {
			t.Errorf("push %d stamp = (%v, %q), want (%v, admin1)", i, up.MarkedAt, up.MarkedBy, want)
		}
	}
}

func TestSyncPendingPartialFailure(t *testing.T) {
	eng, src, clock := newTestEngine(t)
	regs := mustLoad(t, eng, src, "E1", 3)

	sigs := make([]string, len(regs))
	for i, r := range regs {
		sigs[i] = r.QRSignature
	}
	markAll(t, eng, clock, sigs, "admin1")

	src.failFor[regs[1].RegistrationID] = errors.New("remote rejected")

	rep, err := eng.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("SyncPending: %v", err)
	}
	if rep.Synced != 2 || rep.Failed != 1 {
		t.Fatalf("report = %+v, want 2 synced 1 failed", rep)
	}

	var stuck models.PendingSyncIntent
	if err := eng.DB.Where("synced = ?", false).First(&stuck).Error; err != nil {
		t.Fatalf("failed intent missing: %v", err)
	}
	if stuck.RegistrationID != regs[1].RegistrationID {
		t.Fatalf("wrong intent left queued: %s", stuck.RegistrationID)
	}

	// Connectivity comes back: the remainder drains.
	delete(src.failFor, regs[1].RegistrationID)
	rep, err = eng.SyncPending(context.Background())
	if err != nil || rep.Synced != 1 {
		t.Fatalf("second pass = (%+v, %v), want 1 synced", rep, err)
	}
	if n, _ := eng.PendingSyncCount(); n != 0 {
		t.Fatalf("pending after retry = %d", n)
	}
}

func TestSweepSyncedIntents(t *testing.T) {
	eng, src, clock := newTestEngine(t)
	regs := mustLoad(t, eng, src, "E1", 2)

	// One synced old intent, one unsynced equally old intent.
	markAll(t, eng, clock, []string{regs[0].QRSignature}, "admin1")
	src.failFor[regs[1].RegistrationID] = errors.New("offline")
	markAll(t, eng, clock, []string{regs[1].QRSignature}, "admin1")

	if _, err := eng.SyncPending(context.Background()); err != nil {
		t.Fatalf("SyncPending: %v", err)
	}

	// Not old enough yet: nothing swept.
	if n, err := eng.SweepSyncedIntents(); err != nil || n != 0 {
		t.Fatalf("early sweep = (%d, %v), want 0", n, err)
	}

	*clock = clock.Add(eng.Retention + time.Minute)

	n, err := eng.SweepSyncedIntents()
	if err != nil || n != 1 {
		t.Fatalf("sweep = (%d, %v), want 1 deleted", n, err)
	}

	// The unsynced intent survives regardless of age.
	var left []models.PendingSyncIntent
	if err := eng.DB.Find(&left).Error; err != nil {
		t.Fatalf("load intents: %v", err)
	}
	if len(left) != 1 || left[0].Synced {
		t.Fatalf("sweep touched unsynced work: %+v", left)
	}
}

func TestSyncPendingHonoursContext(t *testing.T) {
	eng, src, clock := newTestEngine(t)
	regs := mustLoad(t, eng, src, "E1", 1)
	markAll(t, eng, clock, []string{regs[0].QRSignature}, "admin1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := eng.SyncPending(ctx); err == nil {
		t.Fatal("SyncPending ignored a cancelled context")
	}
	if n, _ := eng.PendingSyncCount(); n != 1 {
		t.Fatalf("cancelled sync changed the queue: pending = %d", n)
	}
}
