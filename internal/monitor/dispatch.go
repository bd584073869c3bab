package monitor

import (
	"errors"
	"fmt"
)

// AddListener registers l. Adding a listener twice has no effect.
func (m *Monitor) AddListener(l Listener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.listeners {
		if existing == l {
			return
		}
	}
	m.listeners = append(m.listeners, l)
}

// RemoveListener unregisters l. Removing an unknown listener has no effect.
func (m *Monitor) RemoveListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.listeners {
		if existing == l {
			m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
			return
		}
	}
}

// batch is a published group of events and the listeners registered when it
// was published.
type batch struct {
	listeners []Listener
	events    []FileEvent
}

// enqueueLocked applies the tracking side effects of events and queues them
// for delivery. Tracking happens for every non-empty batch, whether or not
// anyone is listening. It reports whether the caller became the dispatcher
// and must call deliverQueued. Must be called with m.mu held.
func (m *Monitor) enqueueLocked(events []FileEvent) bool {
	if len(events) == 0 {
		return false
	}
	for _, e := range events {
		m.trackLocked(e.Path, e.Op == Deleted)
	}
	if len(m.listeners) > 0 {
		listeners := make([]Listener, len(m.listeners))
		copy(listeners, m.listeners)
		m.queue = append(m.queue, batch{listeners: listeners, events: events})
	}
	if m.dispatching || len(m.queue) == 0 {
		return false
	}
	m.dispatching = true
	return true
}

// deliverQueued drains the delivery queue, including batches other callers
// queue while it runs, so only one goroutine ever calls listeners. It runs
// without m.mu held so listeners may call back into the Monitor; batches
// they publish are delivered after the current one. The first listener error
// stops its batch; errors of every drained batch are joined.
func (m *Monitor) deliverQueued(dispatcher bool) error {
	if !dispatcher {
		return nil
	}
	var errs []error
	defer func() {
		// A panicking listener must not leave the queue owned.
		if r := recover(); r != nil {
			m.mu.Lock()
			m.dispatching = false
			m.queue = nil
			m.mu.Unlock()
			panic(r)
		}
	}()
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.dispatching = false
			m.mu.Unlock()
			return errors.Join(errs...)
		}
		b := m.queue[0]
		m.queue[0] = batch{}
		m.queue = m.queue[1:]
		m.mu.Unlock()

		if err := deliver(b); err != nil {
			errs = append(errs, err)
		}
	}
}

// deliver hands the events of b to its listeners in order.
func deliver(b batch) error {
	for _, e := range b.events {
		for _, l := range b.listeners {
			if err := l.OnEvent(e); err != nil {
				return fmt.Errorf("listener failed on %s: %w", e, err)
			}
		}
	}
	return nil
}
