package connectivity

import (
	"context"
	"testing"
	"time"
)

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return 0
}

func assertQuiet(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %s", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInitialState(t *testing.T) {
	if !NewMonitor(true).Online() {
		t.Fatal("monitor started offline")
	}
	if NewMonitor(false).Online() {
		t.Fatal("monitor started online")
	}
}

func TestSetEmitsOnlyOnTransition(t *testing.T) {
	m := NewMonitor(false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := m.Subscribe(ctx)

	// Repeating the current state is not a transition.
	m.Set(false)
	m.Set(false)
	assertQuiet(t, ch)

	m.Set(true)
	if evt := recvEvent(t, ch); evt != EventOnline {
		t.Fatalf("got %s, want became_online", evt)
	}
	if !m.Online() {
		t.Fatal("state not updated")
	}

	m.Set(true)
	assertQuiet(t, ch)

	m.Set(false)
	if evt := recvEvent(t, ch); evt != EventOffline {
		t.Fatalf("got %s, want became_offline", evt)
	}
}

func TestAllSubscribersReceiveTransitions(t *testing.T) {
	m := NewMonitor(false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := m.Subscribe(ctx)
	b := m.Subscribe(ctx)

	m.Set(true)
	if recvEvent(t, a) != EventOnline || recvEvent(t, b) != EventOnline {
		t.Fatal("not all subscribers received the transition")
	}
}

func TestCancelClosesSubscription(t *testing.T) {
	m := NewMonitor(false)
	ctx, cancel := context.WithCancel(context.Background())
	ch := m.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("received event instead of close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// Transitions after unsubscribe must not panic.
	m.Set(true)
}
