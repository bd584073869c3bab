package monitor

// DirtyFiles returns the paths that changed since consumer last asked.
//
// The first call for a consumer returns every path the monitor has ever
// observed and starts tracking changes for it. Each later call returns the
// changes recorded since the previous call and resets the consumer's set.
// The result is sorted.
func (m *Monitor) DirtyFiles(consumer string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cursor, ok := m.cursors[consumer]
	if !ok {
		m.cursors[consumer] = pathSet{}
		return m.known.sorted()
	}
	m.cursors[consumer] = pathSet{}
	return cursor.sorted()
}

// trackLocked records a change of path in the known universe and in every
// consumer cursor. Must be called with m.mu held.
func (m *Monitor) trackLocked(path string, deleted bool) {
	if deleted {
		m.known.remove(path)
		for _, cursor := range m.cursors {
			cursor.remove(path)
		}
		return
	}
	m.known.add(path)
	for _, cursor := range m.cursors {
		cursor.add(path)
	}
}
