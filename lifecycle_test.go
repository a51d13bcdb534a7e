package server

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestLifecycleTouchReArmsDeadline(t *testing.T) {
	timers := newLifecycleTimers()
	defer timers.stop()

	var fired atomic.Int32
	for i := 0; i < 4; i++ {
		timers.touch(40*time.Millisecond, func() { fired.Add(1) })
		time.Sleep(15 * time.Millisecond)
	}
	if got := fired.Load(); got != 0 {
		t.Fatalf("expected re-armed deadline not to fire, fired %d times", got)
	}

	time.Sleep(80 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected deadline to fire once after going idle, fired %d times", got)
	}
}

func TestLifecycleTouchInvalidatesInFlightDeadline(t *testing.T) {
	timers := newLifecycleTimers()
	defer timers.stop()

	// Stop cannot cancel a callback that has already left the runtime's
	// timer heap. Hold the mutex across the expiry so the callback is
	// parked on its staleness check, advance the generation the way a
	// re-arming command does, and only then let the callback through.
	var fired atomic.Int32
	timers.touch(time.Microsecond, func() { fired.Add(1) })

	timers.mu.Lock()
	time.Sleep(20 * time.Millisecond)
	timers.inactivityGen++
	timers.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("stale inactivity deadline fired %d time(s) after a re-arm", got)
	}
}

func TestLifecyclePauseDisarmInvalidatesInFlightDeadline(t *testing.T) {
	timers := newLifecycleTimers()
	defer timers.stop()

	var fired atomic.Int32
	timers.armPause(time.Microsecond, func() { fired.Add(1) })

	timers.mu.Lock()
	time.Sleep(20 * time.Millisecond)
	timers.pauseGen++
	timers.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("stale pause deadline fired %d time(s) after a resume", got)
	}
}

func TestLifecyclePauseDisarm(t *testing.T) {
	timers := newLifecycleTimers()
	defer timers.stop()

	var fired atomic.Int32
	timers.armPause(20*time.Millisecond, func() { fired.Add(1) })
	timers.disarmPause()

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("expected disarmed pause deadline not to fire, fired %d times", got)
	}
}

func TestLifecycleStopSilencesBothTimers(t *testing.T) {
	timers := newLifecycleTimers()

	var fired atomic.Int32
	timers.touch(20*time.Millisecond, func() { fired.Add(1) })
	timers.armPause(20*time.Millisecond, func() { fired.Add(1) })
	timers.stop()

	// Re-arming after stop is refused too.
	timers.touch(20*time.Millisecond, func() { fired.Add(1) })
	timers.armPause(20*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("expected stopped timers to stay silent, fired %d times", got)
	}
}
