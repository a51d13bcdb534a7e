package server

import (
	"sync"
	"time"
)

// lifecycleTimers owns a room's inactivity and pause deadlines. Both are
// single-shot and cancellable; once stop is called no callback can fire, so
// a torn-down room never sees a late timer. Timer.Stop cannot cancel a
// callback that has already started, so every armed callback captures the
// generation at arming time and no-ops once a re-arm or disarm has moved
// the generation on.
type lifecycleTimers struct {
	mu            sync.Mutex
	inactivity    *time.Timer
	pause         *time.Timer
	inactivityGen uint64
	pauseGen      uint64
	stopped       bool
}

func newLifecycleTimers() *lifecycleTimers {
	return &lifecycleTimers{}
}

// touch re-arms the inactivity deadline. Called for every accepted command.
// A command that races an expiring deadline wins: the stale callback sees
// the newer generation and does nothing.
func (t *lifecycleTimers) touch(window time.Duration, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if t.inactivity != nil {
		t.inactivity.Stop()
	}
	t.inactivityGen++
	gen := t.inactivityGen
	t.inactivity = time.AfterFunc(window, func() {
		t.mu.Lock()
		stale := t.stopped || gen != t.inactivityGen
		t.mu.Unlock()
		if stale {
			return
		}
		fire()
	})
}

// armPause starts the maximum-pause deadline.
func (t *lifecycleTimers) armPause(window time.Duration, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if t.pause != nil {
		t.pause.Stop()
	}
	t.pauseGen++
	gen := t.pauseGen
	t.pause = time.AfterFunc(window, func() {
		t.mu.Lock()
		stale := t.stopped || gen != t.pauseGen
		t.mu.Unlock()
		if stale {
			return
		}
		fire()
	})
}

// disarmPause cancels the pause deadline on resume, including a callback
// already in flight.
func (t *lifecycleTimers) disarmPause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pauseGen++
	if t.pause != nil {
		t.pause.Stop()
		t.pause = nil
	}
}

// stop cancels both deadlines permanently. Part of room teardown.
func (t *lifecycleTimers) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.inactivity != nil {
		t.inactivity.Stop()
		t.inactivity = nil
	}
	if t.pause != nil {
		t.pause.Stop()
		t.pause = nil
	}
}
