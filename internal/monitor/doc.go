// Package monitor is a polling file monitor.
//
// A Monitor holds a set of watch requests. Each call to ScanAll rescans every
// request, compares the result with the previous scan and publishes the
// differences as FileEvents to the registered listeners. Nothing in this
// package runs on its own: a driver (see package watcher) decides when to
// scan.
//
// Key features:
//   - Three request modes: a single file, a directory and its files, or a
//     whole subtree
//   - Overlapping subtree requests are merged when they are added
//   - Hints from another change source (NotifyChanged, NotifyCreated,
//     NotifyDeleted) are verified against the filesystem by ScanNotified
//     without a full rescan
//   - Per-consumer dirty sets via DirtyFiles
//   - Ant-style path search via FindMatchingAntPath
//
// Hidden entries (names longer than one character starting with '.') are
// never monitored. Renames are reported as a deletion plus a creation.
//
// Listeners are invoked after the monitor's internal lock has been released,
// so a listener may register requests or push hints from inside OnEvent. It
// must not start another scan from there. Deliveries are serialized: events
// published while a listener runs, from any goroutine, are queued and handed
// out after the current batch.
//
// Example usage:
//
//	m := monitor.New()
//	m.AddListener(monitor.ListenerFunc(func(e monitor.FileEvent) error {
//		fmt.Println(e)
//		return nil
//	}))
//	if _, err := m.AddRequest(monitor.NewRequest("/srv/app", monitor.DirectorySubtree)); err != nil {
//		log.Fatal(err)
//	}
//	for range time.Tick(2 * time.Second) {
//		if _, err := m.ScanAll(); err != nil {
//			log.Print(err)
//		}
//	}
package monitor
