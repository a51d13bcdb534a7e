package server

import (
	"strings"
	"sync"
	"time"
)

// roomLock serializes state-mutating commands for one room without blocking
// any goroutine indefinitely. Waiters queue FIFO and are granted ownership
// as the lock frees up; the game loop and paddle updates never queue — when
// the lock is busy their continuation runs immediately with acquired=false,
// which is safe because both are idempotent per invocation.
//
// Every grant arms an auto-release timer. If the owner never releases, the
// timer releases on its behalf so a buggy or stalled handler cannot wedge
// the room. Availability over strict mutual exclusion.
type roomLock struct {
	mu      sync.Mutex
	locked  bool
	owner   string
	queue   []lockWaiter
	timer   *time.Timer
	timeout time.Duration
}

type lockWaiter struct {
	id string
	fn func(acquired bool)
}

func newRoomLock(timeout time.Duration) *roomLock {
	if timeout <= 0 {
		timeout = lockTimeout
	}
	return &roomLock{timeout: timeout}
}

func isBypassRequester(id string) bool {
	return id == lockRequesterTick || strings.HasPrefix(id, lockRequesterPaddlePrefix)
}

// Acquire grants the lock to requesterID if it is free and invokes fn with
// acquired=true. If busy, bypass-class requesters run immediately with
// acquired=false; all others queue until they reach the head. fn always runs
// exactly once, and never while the lock's internal mutex is held.
func (l *roomLock) Acquire(requesterID string, fn func(acquired bool)) {
	l.mu.Lock()
	if !l.locked {
		l.grantLocked(requesterID)
		l.mu.Unlock()
		fn(true)
		return
	}
	if isBypassRequester(requesterID) {
		l.mu.Unlock()
		fn(false)
		return
	}
	l.queue = append(l.queue, lockWaiter{id: requesterID, fn: fn})
	l.mu.Unlock()
}

// Release frees the lock if requesterID is the recorded owner or the
// timeout sentinel. Anyone else's release is a no-op. A successful release
// hands the lock to the next queued waiter, if any.
func (l *roomLock) Release(requesterID string) bool {
	l.mu.Lock()
	if !l.locked || (l.owner != requesterID && requesterID != lockRequesterTimeout) {
		l.mu.Unlock()
		return false
	}

	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.locked = false
	l.owner = ""

	if len(l.queue) == 0 {
		l.mu.Unlock()
		return true
	}

	next := l.queue[0]
	l.queue = l.queue[1:]
	l.grantLocked(next.id)
	l.mu.Unlock()

	next.fn(true)
	return true
}

// Owner reports the current holder, empty when unlocked.
func (l *roomLock) Owner() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

// grantLocked records ownership and arms the auto-release timer. Caller
// holds l.mu.
func (l *roomLock) grantLocked(requesterID string) {
	l.locked = true
	l.owner = requesterID
	l.timer = time.AfterFunc(l.timeout, func() {
		l.Release(lockRequesterTimeout)
	})
}
