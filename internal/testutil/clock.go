package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/roach88/sugarwarrior/internal/clock"
)

// FakeClock is a manually advanced clock.Clock for tests.
//
// Time only moves when Advance or Set is called. Callbacks scheduled with
// AfterFunc fire synchronously inside Advance, in due-time order, after the
// clock's own lock is released, so they may call back into the clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*fakeTimer
}

type fakeTimer struct {
	clock *FakeClock
	id    int
	due   time.Time
	fn    func()
}

// NewFakeClock creates a fake clock reading start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start, timers: make(map[int]*fakeTimer)}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers f to run once the clock has advanced by d.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &fakeTimer{clock: c, id: c.nextID, due: c.now.Add(d), fn: f}
	c.timers[t.id] = t
	return t
}

// Advance moves the clock forward by d and fires every callback that
// became due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	c.fireDue()
}

// Set moves the clock to t and fires every callback that became due.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
	c.fireDue()
}

// Pending returns the number of scheduled, unfired callbacks.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *FakeClock) fireDue() {
	c.mu.Lock()
	var due []*fakeTimer
	for id, t := range c.timers {
		if !t.due.After(c.now) {
			due = append(due, t)
			delete(c.timers, id)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})
	for _, t := range due {
		t.fn()
	}
}

// Stop cancels the callback. Returns false if it already fired or was stopped.
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if _, ok := t.clock.timers[t.id]; !ok {
		return false
	}
	delete(t.clock.timers, t.id)
	return true
}
