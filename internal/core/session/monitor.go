package session

import (
	"sync"
	"time"

	"github.com/cobros/console-gateway/internal/core/ports"
)

// MonitorState is the lifecycle state of the inactivity monitor.
type MonitorState string

const (
	StateIdle    MonitorState = "idle"    // no identity, nothing scheduled
	StateRunning MonitorState = "running" // counting toward the warning
	StateWarning MonitorState = "warning" // countdown visible, expiry pending
	StateExpired MonitorState = "expired" // forced logout fired
)

const (
	// DefaultTotalBudget is the full inactivity budget before forced logout.
	DefaultTotalBudget = 30 * time.Minute
	// DefaultWarningLead is how long before expiry the warning is shown.
	DefaultWarningLead = 2 * time.Minute

	tickInterval = time.Second
)

// Monitor forces logout after a period of operator silence, with an advance
// warning phase. Transitions:
//
//	Idle → Running → Warning → Running (continue / activity)
//	                         → Expired → Idle (after cleanup)
//
// Every (re)arm invalidates all previously scheduled callbacks via a
// generation counter, so redundant activity signals leave exactly one
// scheduled expiry and a stale timer firing after disarm is a no-op.
type Monitor struct {
	clock ports.Clock
	total time.Duration
	warn  time.Duration

	onWarning func()
	onExpire  func()

	mu          sync.Mutex
	state       MonitorState
	gen         uint64
	warnTimer   ports.Timer
	expireTimer ports.Timer
	tickTimer   ports.Timer
	remaining   time.Duration
}

// NewMonitor builds a disarmed monitor. onWarning and onExpire may be nil.
// Non-positive durations fall back to the defaults; warn is clamped below
// total.
func NewMonitor(clock ports.Clock, total, warn time.Duration, onWarning, onExpire func()) *Monitor {
	if total <= 0 {
		total = DefaultTotalBudget
	}
	if warn <= 0 || warn >= total {
		warn = DefaultWarningLead
	}
	return &Monitor{
		clock:     clock,
		total:     total,
		warn:      warn,
		onWarning: onWarning,
		onExpire:  onExpire,
		state:     StateIdle,
	}
}

// State returns the current monitor state.
func (m *Monitor) State() MonitorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Remaining returns the visible countdown during Warning, zero otherwise.
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateWarning {
		return 0
	}
	return m.remaining
}

// Arm starts a fresh Running period. Any pending timers are cancelled first,
// so calling it redundantly is safe.
func (m *Monitor) Arm() {
	m.mu.Lock()
	m.rearmLocked()
	m.mu.Unlock()
}

// Activity resets the budget on a qualifying user signal. It is a no-op
// unless the monitor is Running or Warning, so signals arriving without an
// identity (or after expiry) change nothing.
func (m *Monitor) Activity() {
	m.mu.Lock()
	if m.state == StateRunning || m.state == StateWarning {
		m.rearmLocked()
	}
	m.mu.Unlock()
}

// Continue dismisses the warning and restarts the full budget. Only
// meaningful during Warning.
func (m *Monitor) Continue() {
	m.mu.Lock()
	if m.state == StateWarning {
		m.rearmLocked()
	}
	m.mu.Unlock()
}

// Disarm cancels everything and returns to Idle. Idempotent; must be called
// whenever the identity is cleared or the gateway shuts down so no orphaned
// callback can fire against a future session.
func (m *Monitor) Disarm() {
	m.mu.Lock()
	m.gen++
	m.cancelTimersLocked()
	m.state = StateIdle
	m.remaining = 0
	m.mu.Unlock()
}

// rearmLocked cancels pending timers and schedules a new warning after
// total−warn of silence. Caller holds m.mu.
func (m *Monitor) rearmLocked() {
	m.gen++
	gen := m.gen
	m.cancelTimersLocked()
	m.state = StateRunning
	m.remaining = 0
	m.warnTimer = m.clock.AfterFunc(m.total-m.warn, func() { m.enterWarning(gen) })
}

func (m *Monitor) cancelTimersLocked() {
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
	if m.expireTimer != nil {
		m.expireTimer.Stop()
		m.expireTimer = nil
	}
	if m.tickTimer != nil {
		m.tickTimer.Stop()
		m.tickTimer = nil
	}
}

func (m *Monitor) enterWarning(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateRunning {
		m.mu.Unlock()
		return
	}
	m.state = StateWarning
	m.remaining = m.warn
	m.expireTimer = m.clock.AfterFunc(m.warn, func() { m.expire(gen) })
	m.tickTimer = m.clock.AfterFunc(tickInterval, func() { m.tick(gen) })
	cb := m.onWarning
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// tick decrements the visible countdown once per second. The countdown
// reaching zero and the expiry timer firing are the same logical event:
// whichever runs first wins the state check and the other becomes a no-op.
func (m *Monitor) tick(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateWarning {
		m.mu.Unlock()
		return
	}
	m.remaining -= tickInterval
	if m.remaining > 0 {
		m.tickTimer = m.clock.AfterFunc(tickInterval, func() { m.tick(gen) })
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.expire(gen)
}

func (m *Monitor) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateWarning {
		m.mu.Unlock()
		return
	}
	m.gen++
	m.cancelTimersLocked()
	m.state = StateExpired
	m.remaining = 0
	cb := m.onExpire
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}
