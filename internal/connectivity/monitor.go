// Package connectivity tracks online/offline state and fans transition
// events out to subscribers. Any notification source can feed it: platform
// hooks, message channels, or the HTTP prober in this package.
package connectivity

import (
	"context"
	"sync"
)

// Event is one connectivity transition.
type Event int

const (
	EventOnline Event = iota
	EventOffline
)

func (e Event) String() string {
	if e == EventOnline {
		return "became_online"
	}
	return "became_offline"
}

// Monitor holds the current state and fan-outs transition events to all
// active subscribers.
type Monitor struct {
	mu     sync.RWMutex
	online bool
	subs   map[int]chan Event
	next   int
}

// NewMonitor initialises the monitor from the live network status observed
// at startup.
func NewMonitor(initiallyOnline bool) *Monitor {
	return &Monitor{
		online: initiallyOnline,
		subs:   make(map[int]chan Event),
	}
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Subscribe registers a subscriber and returns a channel which will receive
// transition events. The channel is closed when the provided context ends.
func (m *Monitor) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 4)

	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(ch)
		m.mu.Unlock()
	}()

	return ch
}

// Set records the observed state and emits an event only on a transition, so
// repeated notifications of the same state never cause duplicate drains.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	evt := EventOffline
	if online {
		evt = EventOnline
	}
	for _, ch := range m.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
	m.mu.Unlock()
}
