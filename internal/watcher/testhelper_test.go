package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
	"github.com/blackwell-systems/pollwatch/internal/store"
)

// setupTestStore creates an in-memory SQLite store for tests and registers
// cleanup with t.Cleanup so callers don't need explicit defer.
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("setupTestStore: open: %v", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		t.Fatalf("setupTestStore: schema: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// canonicalDir returns a symlink-free temp dir.
func canonicalDir(t *testing.T) string {
	t.Helper()
	dir, err := monitor.Canonical(t.TempDir())
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// watchedMonitor returns a monitor with a subtree request on root.
func watchedMonitor(t *testing.T, root string) *monitor.Monitor {
	t.Helper()
	mon := monitor.New()
	if _, err := mon.AddRequest(monitor.NewRequest(root, monitor.DirectorySubtree)); err != nil {
		t.Fatalf("AddRequest: %v", err)
	}
	return mon
}

// journaled returns the ops recorded for path, oldest first.
func journaled(t *testing.T, st *store.Store, path string) []string {
	t.Helper()
	events, err := st.ListEvents(store.EventFilter{Path: path})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	ops := make([]string, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		ops = append(ops, events[i].Op)
	}
	return ops
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
