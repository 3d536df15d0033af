// Package testutil holds fakes for the compositor's collaborators.
package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start of a StepClock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a wall clock that advances by a fixed step on every call,
// so timestamps written during a test are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// NewStepClock returns a clock whose first reading is start.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{start: start, step: step}
}

// Now returns the next reading.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Readings is the number of times Now has been called.
func (c *StepClock) Readings() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset makes the next reading start again.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
