package voice

import (
	"testing"
	"time"
)

func newTestClient() *client {
	return &client{
		events:       make(chan Event, 4),
		done:         make(chan struct{}),
		writeTimeout: time.Second,
	}
}

func TestClientStopClosesEvents(t *testing.T) {
	c := newTestClient()

	c.Stop()

	select {
	case _, open := <-c.Events():
		if open {
			t.Fatal("expected closed events channel, got an event")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel still open after Stop")
	}
}

func TestClientStopDrainsBufferedEvents(t *testing.T) {
	c := newTestClient()
	c.emit(Event{Type: EventCallEnd})

	c.Stop()

	ev, open := <-c.Events()
	if !open || ev.Type != EventCallEnd {
		t.Fatalf("buffered event lost on Stop: open=%v ev=%+v", open, ev)
	}

	select {
	case _, open := <-c.Events():
		if open {
			t.Fatal("expected closed events channel after drain")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel still open after Stop")
	}
}

func TestClientStopIdempotent(t *testing.T) {
	c := newTestClient()
	c.Stop()
	c.Stop()

	select {
	case _, open := <-c.Events():
		if open {
			t.Fatal("expected closed events channel, got an event")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel still open after repeated Stop")
	}
}
