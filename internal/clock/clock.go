// Package clock abstracts wall time and delayed callbacks so that the
// suggestion timer and notification expiry can be driven by a fake clock
// in tests.
package clock

import "time"

// Clock supplies the current time and schedules fire-once callbacks.
//
// Thread-safety: implementations must be safe for concurrent use.
// Callbacks run on their own goroutine and must do their own locking.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback returned by AfterFunc.
type Timer interface {
	// Stop prevents the callback from firing. Returns false if it already
	// fired or was stopped. Stopping twice is a no-op.
	Stop() bool
}

// System is the real wall clock. A nil Location means time.Local.
type System struct {
	Location *time.Location
}

// NewSystem creates a wall clock reporting times in loc.
func NewSystem(loc *time.Location) System {
	return System{Location: loc}
}

// Now returns the current wall time in the clock's location.
func (s System) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}

// AfterFunc schedules f on its own goroutine after d.
func (s System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
