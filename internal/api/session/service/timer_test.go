package sessionService

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdownTimer_CompletesExactlyOnce(t *testing.T) {
	var completions int32
	timer := NewCountdownTimer(3, time.Millisecond,
		nil,
		func() { atomic.AddInt32(&completions, 1) },
	)

	timer.Activate()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&completions) == 0 {
		select {
		case <-deadline:
			t.Fatal("timer never completed")
		case <-time.After(time.Millisecond):
		}
	}

	// A completed timer ignores further activation.
	timer.Activate()
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&completions); got != 1 {
		t.Errorf("expected exactly one completion, got %d", got)
	}
	if remaining := timer.Remaining(); remaining != 0 {
		t.Errorf("expected 0 remaining after completion, got %d", remaining)
	}
}

func TestCountdownTimer_ZeroDurationCompletesImmediately(t *testing.T) {
	done := make(chan struct{})
	timer := NewCountdownTimer(0, time.Millisecond, nil, func() { close(done) })

	timer.Activate()

	select {
	case <-done:
	default:
		t.Fatal("zero-duration timer should complete synchronously on Activate")
	}
}

func TestCountdownTimer_ReactivateRestartsFromFullDuration(t *testing.T) {
	ticks := make(chan int, 256)
	timer := NewCountdownTimer(100, 5*time.Millisecond,
		func(_, remaining int) { ticks <- remaining },
		nil,
	)

	timer.Activate()

	// Consume a couple of ticks so remaining has visibly decreased.
	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatal("timer never ticked")
		}
	}

	timer.Deactivate()

	// Drain any tick that was already in flight when Deactivate ran.
drain:
	for {
		select {
		case <-ticks:
		case <-time.After(30 * time.Millisecond):
			break drain
		}
	}

	timer.Activate()

	select {
	case remaining := <-ticks:
		if remaining != 99 {
			t.Errorf("expected restart from full duration (first tick 99), got %d", remaining)
		}
	case <-time.After(time.Second):
		t.Fatal("timer never ticked after reactivation")
	}

	timer.Stop()
}

func TestCountdownTimer_StopHaltsCallbacks(t *testing.T) {
	var ticks int32
	timer := NewCountdownTimer(1000, time.Millisecond,
		func(_, _ int) { atomic.AddInt32(&ticks, 1) },
		nil,
	)

	timer.Activate()
	time.Sleep(20 * time.Millisecond)
	timer.Stop()

	// Let any in-flight callback land before snapshotting.
	time.Sleep(10 * time.Millisecond)
	snapshot := atomic.LoadInt32(&ticks)

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&ticks); got != snapshot {
		t.Errorf("ticks advanced after Stop: %d -> %d", snapshot, got)
	}

	// Activation after Stop is a no-op.
	timer.Activate()
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&ticks); got != snapshot {
		t.Errorf("ticks advanced after post-Stop Activate: %d -> %d", snapshot, got)
	}
}
