package monitor

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"
)

// ScanAll rescans every registered request and publishes the differences
// against each request's previous snapshot. The first scan of a request
// publishes MonitoringStart for everything found instead of diffing.
//
// Requests are processed in registration order and each request's batch is
// published before the next request is scanned. It returns the number of
// events published; listener failures are joined into the returned error
// without stopping the remaining requests.
func (m *Monitor) ScanAll() (int, error) {
	m.scanMu.Lock()
	defer m.scanMu.Unlock()

	entries := m.snapshotEntries()
	if len(entries) == 0 {
		return 0, nil
	}

	var (
		total int
		errs  []error
	)
	for _, e := range entries {
		fresh, ok := m.collect(e.root, e.req.Mode)
		if !ok {
			continue
		}

		m.mu.Lock()
		if !m.isRegisteredLocked(e) {
			m.mu.Unlock()
			continue
		}
		events := m.diffLocked(e, fresh)
		dispatcher := m.enqueueLocked(events)
		m.mu.Unlock()

		m.logger.Debug("full scan", "root", e.root, "entries", len(fresh), "events", len(events))
		total += len(events)
		if err := m.deliverQueued(dispatcher); err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// snapshotEntries copies the registry so scans can iterate it without
// holding the lock.
func (m *Monitor) snapshotEntries() []*entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]*entry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// collect builds a fresh snapshot of a request's root. It reports false when
// the root does not exist, in which case the request is left untouched. The
// root of a directory request is not part of its own snapshot.
func (m *Monitor) collect(root string, mode Mode) (map[string]time.Time, bool) {
	info, err := m.fs.Stat(root)
	if err != nil {
		return nil, false
	}
	fresh := make(map[string]time.Time)
	if isHidden(filepath.Base(root)) {
		return fresh, true
	}
	if mode == SingleFile || !info.IsDir() {
		fresh[root] = info.ModTime()
		return fresh, true
	}
	m.walk(root, mode, fresh)
	return fresh, true
}

// walk records the children of dir into into, descending into directories
// for subtree requests. Hidden entries are skipped along with everything
// below them, symbolic links to directories are recorded but not followed,
// and entries that vanish while walking are ignored.
func (m *Monitor) walk(dir string, mode Mode, into map[string]time.Time) {
	children, err := m.fs.ReadDir(dir)
	if err != nil {
		return
	}
	for _, child := range children {
		if isHidden(child.Name()) {
			continue
		}
		path := filepath.Join(dir, child.Name())
		info, err := m.fs.Stat(path)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			into[path] = info.ModTime()
			continue
		}
		// Shallow requests only pick up files directly inside the root.
		if mode != DirectorySubtree {
			continue
		}
		into[path] = info.ModTime()
		if child.Type()&fs.ModeSymlink == 0 {
			m.walk(path, mode, into)
		}
	}
}

// diffLocked compares fresh against e's previous snapshot, settles the
// pending notifications a full scan supersedes and installs fresh as the new
// snapshot. Must be called with m.mu held.
func (m *Monitor) diffLocked(e *entry, fresh map[string]time.Time) []FileEvent {
	var events []FileEvent
	prior := e.snapshot

	if prior != nil {
		for _, path := range sortedKeys(fresh) {
			current := fresh[path]
			previous, existed := prior[path]
			if !existed {
				events = append(events, FileEvent{Path: path, ModTime: current, Op: Created})
				m.pendingCreated.remove(path)
				continue
			}
			if !current.Equal(previous) {
				events = append(events, FileEvent{Path: path, ModTime: current, Op: Updated})
				m.pendingChanged.remove(path)
			}
		}
		for _, path := range sortedKeys(prior) {
			if _, ok := fresh[path]; ok {
				continue
			}
			events = append(events, FileEvent{Path: path, ModTime: prior[path], Op: Deleted})
			m.pendingDeleted.remove(path)
		}
	} else {
		for _, path := range sortedKeys(fresh) {
			events = append(events, FileEvent{Path: path, ModTime: fresh[path], Op: MonitoringStart})
		}
	}

	for path := range fresh {
		m.known.add(path)
	}
	e.snapshot = fresh

	// Genuine creations and deletions in scope were just found by the walk;
	// whatever is left is stale or belongs to nobody.
	m.pendingCreated.clear()
	m.pendingDeleted.clear()

	// A change notification the diff did not see means the file was rewritten
	// within the same timestamp granularity.
	for _, path := range m.pendingChanged.sorted() {
		info, err := m.fs.Stat(path)
		if err != nil {
			continue
		}
		events = append(events, FileEvent{Path: path, ModTime: info.ModTime(), Op: Updated})
	}
	m.pendingChanged.clear()

	return events
}
