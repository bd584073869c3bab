package monitor

import (
	"fmt"
	"path/filepath"
)

// AddRequest registers req.
//
// A subtree request is rejected (false, nil) when an already registered
// subtree request covers its root. Registered subtree requests below the new
// root are removed first, publishing MonitoringFinish for their snapshots.
// An error is returned when the root cannot be resolved to a canonical path,
// in which case nothing changes.
func (m *Monitor) AddRequest(req *Request) (bool, error) {
	if req == nil {
		return false, ErrNilRequest
	}
	root, err := m.fs.Canonical(req.Path)
	if err != nil {
		return false, fmt.Errorf("%w %q: %v", ErrUnresolvablePath, req.Path, err)
	}

	m.mu.Lock()
	if _, ok := m.byRequest[req]; ok {
		m.mu.Unlock()
		return false, nil
	}

	var finished []FileEvent
	if req.Mode == DirectorySubtree {
		for _, e := range m.entries {
			if e.req.Mode == DirectorySubtree && isAncestorOrEqual(e.root, root) {
				m.mu.Unlock()
				m.logger.Debug("request already covered", "path", root, "by", e.root)
				return false, nil
			}
		}
		var subsumed []*entry
		for _, e := range m.entries {
			if e.req.Mode == DirectorySubtree && isAncestor(root, e.root) {
				subsumed = append(subsumed, e)
			}
		}
		for _, e := range subsumed {
			m.logger.Debug("request subsumed", "path", e.root, "by", root)
			finished = append(finished, m.removeLocked(e)...)
		}
	}

	e := &entry{req: req, root: root}
	m.entries = append(m.entries, e)
	m.byRequest[req] = e
	dispatcher := m.enqueueLocked(finished)
	m.mu.Unlock()

	return true, m.deliverQueued(dispatcher)
}

// RemoveRequest unregisters req, publishing MonitoringFinish for every path
// in its snapshot. It reports whether req was registered.
func (m *Monitor) RemoveRequest(req *Request) (bool, error) {
	if req == nil {
		return false, ErrNilRequest
	}
	m.mu.Lock()
	e, ok := m.byRequest[req]
	if !ok {
		m.mu.Unlock()
		return false, nil
	}
	finished := m.removeLocked(e)
	dispatcher := m.enqueueLocked(finished)
	m.mu.Unlock()

	return true, m.deliverQueued(dispatcher)
}

// removeLocked drops e from the registry and returns the MonitoringFinish
// events for its snapshot. Must be called with m.mu held.
func (m *Monitor) removeLocked(e *entry) []FileEvent {
	var events []FileEvent
	for _, path := range sortedKeys(e.snapshot) {
		events = append(events, FileEvent{Path: path, ModTime: e.snapshot[path], Op: MonitoringFinish})
	}
	e.snapshot = nil

	delete(m.byRequest, e.req)
	for i, existing := range m.entries {
		if existing == e {
			m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
			break
		}
	}
	return events
}

// Requests returns the registered requests in registration order.
func (m *Monitor) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.req)
	}
	return out
}

// isRegisteredLocked reports whether e is still the live entry for its request.
func (m *Monitor) isRegisteredLocked(e *entry) bool {
	return m.byRequest[e.req] == e
}

// Monitored returns every path in every request's current snapshot, in
// registration order. Requests that were never scanned contribute nothing.
func (m *Monitor) Monitored() []FileDetails {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []FileDetails
	for _, e := range m.entries {
		for _, path := range sortedKeys(e.snapshot) {
			out = append(out, FileDetails{Path: path, ModTime: e.snapshot[path]})
		}
	}
	return out
}

// within reports whether a canonical path falls inside the scope of e.
func (e *entry) within(path string) bool {
	switch e.req.Mode {
	case DirectorySubtree:
		return isAncestor(e.root, path) && !hiddenBelow(e.root, path)
	case DirectoryShallow:
		return filepath.Dir(path) == e.root && path != e.root
	default:
		return path == e.root
	}
}

// withinAnyLocked reports whether some registered request covers path.
func (m *Monitor) withinAnyLocked(path string) bool {
	for _, e := range m.entries {
		if e.within(path) {
			return true
		}
	}
	return false
}
