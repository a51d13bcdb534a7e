package server

import (
	"sync"
	"testing"
	"time"
)

func TestRoomLockGrantsWhenFree(t *testing.T) {
	lock := newRoomLock(time.Second)

	var granted bool
	lock.Acquire("alice", func(acquired bool) {
		granted = acquired
	})
	if !granted {
		t.Fatalf("expected immediate grant on a free lock")
	}
	if got := lock.Owner(); got != "alice" {
		t.Fatalf("expected owner alice, got %q", got)
	}

	if !lock.Release("alice") {
		t.Fatalf("expected owner release to succeed")
	}
	if got := lock.Owner(); got != "" {
		t.Fatalf("expected no owner after release, got %q", got)
	}
}

func TestRoomLockQueuesWaitersFIFO(t *testing.T) {
	lock := newRoomLock(time.Minute)
	lock.Acquire("alice", func(bool) {})

	var mu sync.Mutex
	var order []string
	enqueue := func(id string) {
		lock.Acquire(id, func(acquired bool) {
			if !acquired {
				t.Errorf("waiter %s woke without the lock", id)
			}
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
		})
	}
	enqueue("bob")
	enqueue("carol")

	mu.Lock()
	if len(order) != 0 {
		t.Fatalf("waiters ran before the lock was released: %v", order)
	}
	mu.Unlock()

	lock.Release("alice")
	lock.Release("bob")
	lock.Release("carol")

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "bob" || order[1] != "carol" {
		t.Fatalf("expected FIFO wakeup [bob carol], got %v", order)
	}
}

func TestRoomLockNonOwnerReleaseIsNoOp(t *testing.T) {
	lock := newRoomLock(time.Minute)
	lock.Acquire("alice", func(bool) {})

	if lock.Release("bob") {
		t.Fatalf("expected non-owner release to be refused")
	}
	if got := lock.Owner(); got != "alice" {
		t.Fatalf("expected alice to keep the lock, got %q", got)
	}
}

func TestRoomLockReleaseWhenUnlocked(t *testing.T) {
	lock := newRoomLock(time.Minute)
	if lock.Release("alice") {
		t.Fatalf("expected release of an unlocked lock to be refused")
	}
}

func TestRoomLockAutoReleaseGrantsNextWaiter(t *testing.T) {
	lock := newRoomLock(10 * time.Millisecond)
	// alice takes the lock and never releases it.
	lock.Acquire("alice", func(bool) {})

	woke := make(chan bool, 1)
	lock.Acquire("bob", func(acquired bool) {
		woke <- acquired
	})

	select {
	case acquired := <-woke:
		if !acquired {
			t.Fatalf("expected bob to wake holding the lock")
		}
	case <-time.After(time.Second):
		t.Fatalf("auto-release never woke the queued waiter")
	}
	if got := lock.Owner(); got != "bob" {
		t.Fatalf("expected bob to own the lock after auto-release, got %q", got)
	}
}

func TestRoomLockBypassRequestersNeverQueue(t *testing.T) {
	lock := newRoomLock(time.Minute)
	lock.Acquire("alice", func(bool) {})

	ran := 0
	lock.Acquire(lockRequesterTick, func(acquired bool) {
		ran++
		if acquired {
			t.Fatalf("expected tick requester to run without the lock")
		}
	})
	lock.Acquire(lockRequesterPaddlePrefix+"bob", func(acquired bool) {
		ran++
		if acquired {
			t.Fatalf("expected paddle requester to run without the lock")
		}
	})
	if ran != 2 {
		t.Fatalf("expected both bypass requesters to run immediately, ran %d", ran)
	}
	if got := lock.Owner(); got != "alice" {
		t.Fatalf("expected alice to still own the lock, got %q", got)
	}
}

func TestRoomLockBypassAcquiresWhenFree(t *testing.T) {
	lock := newRoomLock(time.Minute)

	lock.Acquire(lockRequesterTick, func(acquired bool) {
		if !acquired {
			t.Fatalf("expected tick requester to take a free lock")
		}
	})
	if got := lock.Owner(); got != lockRequesterTick {
		t.Fatalf("expected tick requester to own the lock, got %q", got)
	}
	if !lock.Release(lockRequesterTick) {
		t.Fatalf("expected tick requester release to succeed")
	}
}

func TestRoomLockReleaseStopsAutoReleaseTimer(t *testing.T) {
	lock := newRoomLock(30 * time.Millisecond)
	lock.Acquire("alice", func(bool) {})
	time.Sleep(20 * time.Millisecond)
	lock.Release("alice")

	// A manual release must cancel the pending auto-release; otherwise
	// alice's stale timer would evict the next holder early.
	lock.Acquire("bob", func(bool) {})
	time.Sleep(20 * time.Millisecond)
	if got := lock.Owner(); got != "bob" {
		t.Fatalf("expected bob to keep the lock, got %q", got)
	}
	lock.Release("bob")
}
