package lob

import "sync"

// EventSink receives book events (trades, accepts, cancels, depth deltas).
//
// IMPORTANT: Implementations must either:
//  1. Process events synchronously before returning, OR
//  2. Clone the BookEvent data before returning
//
// The engine recycles BookEvent objects to a sync.Pool after Publish
// returns, so any asynchronous processing must work with cloned data.
type EventSink interface {
	Publish(...*BookEvent)
}

// MemoryEventSink stores events in memory, useful for testing.
type MemoryEventSink struct {
	mu     sync.RWMutex
	events []*BookEvent
}

// NewMemoryEventSink creates a new MemoryEventSink.
func NewMemoryEventSink() *MemoryEventSink {
	return &MemoryEventSink{
		events: make([]*BookEvent, 0),
	}
}

// Publish appends cloned events to the in-memory slice.
func (m *MemoryEventSink) Publish(events ...*BookEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		cpy := new(BookEvent)
		*cpy = *ev
		m.events = append(m.events, cpy)
	}
}

// Count returns the number of events stored.
func (m *MemoryEventSink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Get returns the event at the specified index.
func (m *MemoryEventSink) Get(index int) *BookEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.events[index]
}

// Events returns a copy of all events stored.
func (m *MemoryEventSink) Events() []*BookEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*BookEvent, len(m.events))
	copy(events, m.events)
	return events
}

// OfType returns stored events matching the given type, in order.
func (m *MemoryEventSink) OfType(t EventType) []*BookEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*BookEvent
	for _, ev := range m.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// DiscardEventSink drops all events, useful for benchmarking.
type DiscardEventSink struct{}

// NewDiscardEventSink creates a new DiscardEventSink.
func NewDiscardEventSink() *DiscardEventSink {
	return &DiscardEventSink{}
}

// Publish does nothing.
func (p *DiscardEventSink) Publish(events ...*BookEvent) {
}
