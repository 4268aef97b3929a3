package ports

import "time"

// Timer is a cancelable pending callback. Stop reports whether the call was
// prevented from firing; stopping an already-fired or already-stopped timer
// is a no-op.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time so timer-driven logic can run against virtual
// time in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock drives callbacks with the runtime timer wheel.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
