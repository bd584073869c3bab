package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
)

// NativeHints forwards fsnotify events for the monitor's directories as
// Notify* hints. The monitor's scans stay authoritative; a missed native
// event is caught by the next full scan.
type NativeHints struct {
	mon    *monitor.Monitor
	fsw    *fsnotify.Watcher
	logger *slog.Logger

	mu      sync.Mutex
	watched map[string]struct{}

	wg sync.WaitGroup
}

// NewNativeHints starts forwarding events. Call Sync to choose directories.
func NewNativeHints(mon *monitor.Monitor, logger *slog.Logger) (*NativeHints, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	n := &NativeHints{
		mon:     mon,
		fsw:     fsw,
		logger:  logger,
		watched: make(map[string]struct{}),
	}
	n.wg.Add(1)
	go n.run()
	return n, nil
}

// Sync watches every directory holding a monitored path or a request root
// and drops directories that no longer do. Directories that cannot be watched
// are skipped.
func (n *NativeHints) Sync() error {
	want := make(map[string]struct{})
	for _, req := range n.mon.Requests() {
		root, err := monitor.Canonical(req.Path)
		if err != nil {
			continue
		}
		if req.Mode == monitor.SingleFile {
			root = filepath.Dir(root)
		}
		want[root] = struct{}{}
	}
	for _, d := range n.mon.Monitored() {
		want[filepath.Dir(d.Path)] = struct{}{}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for dir := range n.watched {
		if _, ok := want[dir]; ok {
			continue
		}
		_ = n.fsw.Remove(dir)
		delete(n.watched, dir)
	}

	skipped := 0
	for dir := range want {
		if _, ok := n.watched[dir]; ok {
			continue
		}
		if err := n.fsw.Add(dir); err != nil {
			skipped++
			continue
		}
		n.watched[dir] = struct{}{}
	}
	if skipped > 0 {
		return fmt.Errorf("%d directories could not be watched", skipped)
	}
	return nil
}

// Watched returns the number of directories currently watched.
func (n *NativeHints) Watched() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.watched)
}

func (n *NativeHints) run() {
	defer n.wg.Done()

	for {
		select {
		case ev, ok := <-n.fsw.Events:
			if !ok {
				return
			}
			n.forward(ev)
		case err, ok := <-n.fsw.Errors:
			if !ok {
				return
			}
			n.logger.Warn("native hints", "err", err)
		}
	}
}

func (n *NativeHints) forward(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		n.mon.NotifyCreated(ev.Name)
	}
	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Chmod) {
		n.mon.NotifyChanged(ev.Name)
	}
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		n.mon.NotifyDeleted(ev.Name)
	}
}

// Close stops forwarding and releases the fsnotify watcher.
func (n *NativeHints) Close() error {
	err := n.fsw.Close()
	n.wg.Wait()
	return err
}
