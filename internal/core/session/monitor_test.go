package session

import (
	"sync/atomic"
	"testing"
	"time"
)

const (
	testTotal = 30 * time.Minute
	testWarn  = 2 * time.Minute
)

func newTestMonitor(clock *fakeClock) (*Monitor, *atomic.Int32, *atomic.Int32) {
	var warnings, expiries atomic.Int32
	m := NewMonitor(clock, testTotal, testWarn,
		func() { warnings.Add(1) },
		func() { expiries.Add(1) },
	)
	return m, &warnings, &expiries
}

func TestMonitor_StartsIdle(t *testing.T) {
	m, _, _ := newTestMonitor(newFakeClock())
	if got := m.State(); got != StateIdle {
		t.Fatalf("expected Idle, got %s", got)
	}
	if m.Remaining() != 0 {
		t.Fatal("expected zero countdown while idle")
	}
}

func TestMonitor_WarningAfterSilence(t *testing.T) {
	clock := newFakeClock()
	m, warnings, expiries := newTestMonitor(clock)
	m.Arm()

	clock.Advance(28*time.Minute - time.Second)
	if got := m.State(); got != StateRunning {
		t.Fatalf("expected Running just before the warning point, got %s", got)
	}

	clock.Advance(time.Second)
	if got := m.State(); got != StateWarning {
		t.Fatalf("expected Warning after 28 minutes of silence, got %s", got)
	}
	if got := m.Remaining(); got != testWarn {
		t.Fatalf("expected countdown %v, got %v", testWarn, got)
	}
	if warnings.Load() != 1 {
		t.Fatalf("expected one warning callback, got %d", warnings.Load())
	}
	if expiries.Load() != 0 {
		t.Fatal("expiry must not fire during warning entry")
	}
}

func TestMonitor_CountdownTicksAndExpiresOnce(t *testing.T) {
	clock := newFakeClock()
	m, _, expiries := newTestMonitor(clock)
	m.Arm()

	clock.Advance(28 * time.Minute)
	clock.Advance(30 * time.Second)
	if got := m.Remaining(); got != 90*time.Second {
		t.Fatalf("expected 90s remaining, got %v", got)
	}

	// The countdown reaching zero and the expiry timer firing are the same
	// logical event: exactly one logout.
	clock.Advance(2 * time.Minute)
	if got := m.State(); got != StateExpired {
		t.Fatalf("expected Expired, got %s", got)
	}
	if expiries.Load() != 1 {
		t.Fatalf("expected exactly one expiry, got %d", expiries.Load())
	}

	// Nothing is left scheduled after expiry.
	clock.Advance(time.Hour)
	if expiries.Load() != 1 {
		t.Fatalf("stale callbacks fired after expiry: %d", expiries.Load())
	}
}

func TestMonitor_ActivityIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	m, warnings, expiries := newTestMonitor(clock)
	m.Arm()

	// A burst of activity signals must leave exactly one scheduled warning.
	for i := 0; i < 5; i++ {
		m.Activity()
	}
	if got := clock.pendingTimers(); got != 1 {
		t.Fatalf("expected exactly one pending timer after burst, got %d", got)
	}

	clock.Advance(28*time.Minute - time.Second)
	if got := m.State(); got != StateRunning {
		t.Fatalf("expected Running, got %s", got)
	}
	clock.Advance(time.Second)
	if warnings.Load() != 1 || m.State() != StateWarning {
		t.Fatalf("expected single warning, got %d warnings in state %s", warnings.Load(), m.State())
	}
	if expiries.Load() != 0 {
		t.Fatal("no expiry expected yet")
	}
}

func TestMonitor_ActivityResetsRunningPeriod(t *testing.T) {
	clock := newFakeClock()
	m, _, _ := newTestMonitor(clock)
	m.Arm()

	clock.Advance(20 * time.Minute)
	m.Activity()

	// 27 more minutes of silence: 28-minute mark not yet reached again.
	clock.Advance(27 * time.Minute)
	if got := m.State(); got != StateRunning {
		t.Fatalf("expected Running after reset, got %s", got)
	}
	clock.Advance(time.Minute)
	if got := m.State(); got != StateWarning {
		t.Fatalf("expected Warning 28 minutes after last activity, got %s", got)
	}
}

func TestMonitor_ActivityDuringWarningRearms(t *testing.T) {
	clock := newFakeClock()
	m, _, expiries := newTestMonitor(clock)
	m.Arm()

	clock.Advance(28 * time.Minute)
	clock.Advance(time.Minute)
	if m.State() != StateWarning {
		t.Fatal("expected Warning")
	}

	m.Activity()
	if got := m.State(); got != StateRunning {
		t.Fatalf("expected Running after activity during warning, got %s", got)
	}
	if m.Remaining() != 0 {
		t.Fatal("countdown must clear on re-arm")
	}

	clock.Advance(2 * time.Minute)
	if expiries.Load() != 0 {
		t.Fatal("cancelled expiry fired after re-arm")
	}
}

func TestMonitor_ContinueRestoresFullBudget(t *testing.T) {
	clock := newFakeClock()
	m, warnings, expiries := newTestMonitor(clock)
	m.Arm()

	clock.Advance(28 * time.Minute)
	clock.Advance(100 * time.Second)
	if m.State() != StateWarning {
		t.Fatal("expected Warning")
	}

	m.Continue()
	if got := m.State(); got != StateRunning {
		t.Fatalf("expected Running after continue, got %s", got)
	}

	// A fresh 28-minute silence produces the warning again.
	clock.Advance(28 * time.Minute)
	if m.State() != StateWarning {
		t.Fatal("expected second Warning after fresh silence")
	}
	if warnings.Load() != 2 {
		t.Fatalf("expected two warnings, got %d", warnings.Load())
	}
	if expiries.Load() != 0 {
		t.Fatalf("unexpected expiry: %d", expiries.Load())
	}
}

func TestMonitor_ContinueOutsideWarningIsNoop(t *testing.T) {
	clock := newFakeClock()
	m, _, _ := newTestMonitor(clock)

	m.Continue()
	if got := m.State(); got != StateIdle {
		t.Fatalf("Continue while idle must not arm, got %s", got)
	}
}

func TestMonitor_DisarmCancelsEverything(t *testing.T) {
	clock := newFakeClock()
	m, warnings, expiries := newTestMonitor(clock)
	m.Arm()

	clock.Advance(29 * time.Minute) // inside Warning
	m.Disarm()
	if got := m.State(); got != StateIdle {
		t.Fatalf("expected Idle after disarm, got %s", got)
	}
	if got := clock.pendingTimers(); got != 0 {
		t.Fatalf("expected no pending timers after disarm, got %d", got)
	}

	// No orphaned callback may fire against a later session.
	clock.Advance(2 * time.Hour)
	if expiries.Load() != 0 {
		t.Fatalf("orphaned expiry fired after disarm: %d", expiries.Load())
	}
	if warnings.Load() != 1 {
		t.Fatalf("expected the single pre-disarm warning, got %d", warnings.Load())
	}
}

func TestMonitor_ActivityWhileIdleIsNoop(t *testing.T) {
	clock := newFakeClock()
	m, _, _ := newTestMonitor(clock)

	m.Activity()
	if got := m.State(); got != StateIdle {
		t.Fatalf("Activity while idle must not arm, got %s", got)
	}
	if got := clock.pendingTimers(); got != 0 {
		t.Fatalf("expected no timers, got %d", got)
	}
}

func TestMonitor_DisarmIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	m, _, _ := newTestMonitor(clock)
	m.Arm()

	m.Disarm()
	m.Disarm()
	if got := m.State(); got != StateIdle {
		t.Fatalf("expected Idle, got %s", got)
	}
}
