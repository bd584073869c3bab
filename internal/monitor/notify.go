package monitor

import (
	"errors"
	"path/filepath"
	"time"
)

// NotifyChanged records a hint that path was modified. path must already be
// canonical. Consumer tracking is updated regardless of scope; the hint is
// only kept for ScanNotified when some request covers path. Hints about
// hidden entries, or below a hidden directory of a watched root, are ignored.
func (m *Monitor) NotifyChanged(path string) {
	m.notify(path, m.pendingChanged, false)
}

// NotifyCreated records a hint that path was created.
func (m *Monitor) NotifyCreated(path string) {
	m.notify(path, m.pendingCreated, false)
}

// NotifyDeleted records a hint that path was deleted.
func (m *Monitor) NotifyDeleted(path string) {
	m.notify(path, m.pendingDeleted, true)
}

func (m *Monitor) notify(path string, pending pathSet, deleted bool) {
	if isHidden(filepath.Base(path)) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hiddenInAnyLocked(path) {
		return
	}
	m.trackLocked(path, deleted)
	if m.withinAnyLocked(path) {
		pending.add(path)
	}
}

// hiddenInAnyLocked reports whether path sits below a hidden directory of
// some registered request root.
func (m *Monitor) hiddenInAnyLocked(path string) bool {
	for _, e := range m.entries {
		if isAncestor(e.root, path) && hiddenBelow(e.root, path) {
			return true
		}
	}
	return false
}

// IsDirty reports whether any hint is waiting for ScanNotified.
func (m *Monitor) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDirtyLocked()
}

func (m *Monitor) isDirtyLocked() bool {
	return len(m.pendingChanged) > 0 || len(m.pendingCreated) > 0 || len(m.pendingDeleted) > 0
}

// ScanNotified verifies pending hints against the filesystem and publishes
// the ones that hold, without rescanning whole requests. Each request takes
// the hints within its scope in the order changed, created, deleted, and its
// batch is published before the next request is handled.
func (m *Monitor) ScanNotified() (int, error) {
	m.scanMu.Lock()
	defer m.scanMu.Unlock()

	m.mu.Lock()
	if len(m.entries) == 0 || !m.isDirtyLocked() {
		m.mu.Unlock()
		return 0, nil
	}
	m.mu.Unlock()

	var (
		total int
		errs  []error
	)
	for _, e := range m.snapshotEntries() {
		m.mu.Lock()
		if !m.isRegisteredLocked(e) {
			m.mu.Unlock()
			continue
		}
		if e.snapshot == nil {
			e.snapshot = make(map[string]time.Time)
		}
		var events []FileEvent
		events = append(events, m.reconcileChangedLocked(e)...)
		events = append(events, m.reconcileCreatedLocked(e)...)
		events = append(events, m.reconcileDeletedLocked(e)...)
		dispatcher := m.enqueueLocked(events)
		m.mu.Unlock()

		if len(events) > 0 {
			m.logger.Debug("notified scan", "root", e.root, "events", len(events))
		}
		total += len(events)
		if err := m.deliverQueued(dispatcher); err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

func (m *Monitor) reconcileChangedLocked(e *entry) []FileEvent {
	var events []FileEvent
	for _, path := range m.pendingChanged.sorted() {
		if !e.within(path) {
			continue
		}
		m.pendingChanged.remove(path)
		info, err := m.fs.Stat(path)
		if err != nil {
			continue
		}
		events = append(events, FileEvent{Path: path, ModTime: info.ModTime(), Op: Updated})
		e.snapshot[path] = info.ModTime()
		// An update wins over a pending creation of the same path.
		m.pendingCreated.remove(path)
	}
	return events
}

func (m *Monitor) reconcileCreatedLocked(e *entry) []FileEvent {
	var events []FileEvent
	for _, path := range m.pendingCreated.sorted() {
		if !e.within(path) {
			continue
		}
		m.pendingCreated.remove(path)
		info, err := m.fs.Stat(path)
		if err != nil {
			continue
		}
		events = append(events, FileEvent{Path: path, ModTime: info.ModTime(), Op: Created})
		e.snapshot[path] = info.ModTime()
	}
	return events
}

func (m *Monitor) reconcileDeletedLocked(e *entry) []FileEvent {
	var events []FileEvent
	for _, path := range m.pendingDeleted.sorted() {
		if !e.within(path) {
			continue
		}
		m.pendingDeleted.remove(path)
		if _, err := m.fs.Stat(path); err == nil {
			// Recreated before we got here; the hint no longer holds.
			continue
		}
		events = append(events, FileEvent{Path: path, ModTime: e.snapshot[path], Op: Deleted})
		delete(e.snapshot, path)
	}
	return events
}
