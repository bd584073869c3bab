// Package watcher keeps a monitor.Monitor running as a long-lived process.
//
// Each tick drains the hint log written by cmd/pollwatch-hint, runs a
// notified scan (or a full scan every FullScanEvery ticks), and journals the
// published events into the store in a single transaction.
//
// Key features:
//   - Hint log polling with crash-safe offset tracking (temp file + rename)
//   - Optional fsnotify hints that feed the same Notify* calls
//   - Batched SQLite inserts (single transaction per tick)
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
//
// Example usage:
//
//	st, err := store.New("~/.pollwatch/pollwatch.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer st.Close()
//
//	mon := monitor.New()
//	mon.AddRequest(monitor.NewRequest("/srv/app", monitor.DirectorySubtree))
//
//	w, err := watcher.New(mon, watcher.Options{Store: st, HintsLog: "/tmp/hints.log"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Start watching in foreground
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
package watcher
