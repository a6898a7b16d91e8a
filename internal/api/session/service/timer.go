package sessionService

import (
	"sync"
	"time"
)

// CountdownTimer tracks remaining interview time and fires its completion
// callback exactly once. Re-activation restarts from the full duration
// instead of resuming, so a remount can never desync elapsed time.
type CountdownTimer struct {
	mu        sync.Mutex
	total     int
	remaining int
	tick      time.Duration
	fired     bool
	stopped   bool
	stopCh    chan struct{}

	onTick     func(elapsed, remaining int)
	onComplete func()
}

// NewCountdownTimer builds a timer for totalSeconds of countdown. The tick
// interval is injectable so tests can simulate seconds without waiting.
func NewCountdownTimer(totalSeconds int, tick time.Duration, onTick func(elapsed, remaining int), onComplete func()) *CountdownTimer {
	if tick <= 0 {
		tick = time.Second
	}
	return &CountdownTimer{
		total:      totalSeconds,
		remaining:  totalSeconds,
		tick:       tick,
		onTick:     onTick,
		onComplete: onComplete,
	}
}

// Activate starts the countdown from the full configured duration. A zero
// duration completes immediately. Activating after completion or Stop is a
// no-op.
func (t *CountdownTimer) Activate() {
	t.mu.Lock()
	if t.fired || t.stopped {
		t.mu.Unlock()
		return
	}

	if t.stopCh != nil {
		close(t.stopCh)
	}
	t.remaining = t.total

	if t.total <= 0 {
		t.fired = true
		t.mu.Unlock()
		if t.onComplete != nil {
			t.onComplete()
		}
		return
	}

	stopCh := make(chan struct{})
	t.stopCh = stopCh
	t.mu.Unlock()

	go t.run(stopCh)
}

// Deactivate halts ticking without marking the timer done. The next Activate
// restarts from the full duration.
func (t *CountdownTimer) Deactivate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
}

// Stop permanently halts the timer. No callback runs after Stop returns
// control of the mutex.
func (t *CountdownTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
}

func (t *CountdownTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *CountdownTimer) run(stopCh chan struct{}) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stopped || t.fired || t.stopCh != stopCh {
				t.mu.Unlock()
				return
			}

			t.remaining--
			elapsed := t.total - t.remaining
			remaining := t.remaining
			done := t.remaining <= 0
			if done {
				t.fired = true
				t.stopCh = nil
			}
			onTick := t.onTick
			onComplete := t.onComplete
			t.mu.Unlock()

			if onTick != nil {
				onTick(elapsed, remaining)
			}
			if done {
				if onComplete != nil {
					onComplete()
				}
				return
			}
		}
	}
}
