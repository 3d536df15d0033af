// Package prioritylock provides a two-class mutual exclusion primitive.
//
// High-priority holders (operator edits) are never queued behind more than
// one low-priority critical section (a render iteration), while
// low-priority holders can still run back to back when no high-priority
// request is pending.
//
// The protocol uses three mutexes:
//
//	low acquire:   lock low, lock queue, lock data, unlock queue
//	low release:   unlock data, unlock low
//	high acquire:  lock queue, lock data, unlock queue
//	high release:  unlock data
//
// A low-priority holder keeps low for its whole critical section, so at
// most one low-priority request can be contending on queue at a time. A
// high-priority request therefore only ever competes with that single
// request for queue and, once it holds queue, waits for at most the current
// data holder.
package prioritylock

import "sync"

// Lock is a priority lock. The zero value is unlocked and ready to use.
// A Lock must not be copied after first use.
type Lock struct {
	data  sync.Mutex
	queue sync.Mutex
	low   sync.Mutex
}

// LockLow acquires the lock with low priority.
func (l *Lock) LockLow() {
	l.low.Lock()
	l.queue.Lock()
	l.data.Lock()
	l.queue.Unlock()
}

// UnlockLow releases a lock acquired with LockLow.
func (l *Lock) UnlockLow() {
	l.data.Unlock()
	l.low.Unlock()
}

// LockHigh acquires the lock with high priority.
func (l *Lock) LockHigh() {
	l.queue.Lock()
	l.data.Lock()
	l.queue.Unlock()
}

// UnlockHigh releases a lock acquired with LockHigh.
func (l *Lock) UnlockHigh() {
	l.data.Unlock()
}

// WithLow runs fn while holding the lock with low priority.
func (l *Lock) WithLow(fn func()) {
	l.LockLow()
	defer l.UnlockLow()
	fn()
}

// WithHigh runs fn while holding the lock with high priority.
func (l *Lock) WithHigh(fn func()) {
	l.LockHigh()
	defer l.UnlockHigh()
	fn()
}
