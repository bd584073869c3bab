package watcher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/pollwatch/internal/metrics"
	"github.com/blackwell-systems/pollwatch/internal/monitor"
	"github.com/blackwell-systems/pollwatch/internal/store"
)

const (
	defaultInterval      = 2 * time.Second
	defaultFullScanEvery = 5
)

// Options configures a Watcher. Only the monitor passed to New is required.
type Options struct {
	// Store receives every published event. Nil disables the journal.
	Store *store.Store
	// Interval between ticks. Defaults to 2s.
	Interval time.Duration
	// FullScanEvery makes every Nth tick a full scan instead of a notified
	// scan. Defaults to 5.
	FullScanEvery int
	// HintsLog is the hint file drained on every tick. Empty disables it.
	HintsLog string
	// Native feeds fsnotify events into the monitor as hints.
	Native  bool
	Metrics *metrics.Metrics
	// MetricsAddr is the listen address Run serves Metrics on. Empty
	// disables the endpoint.
	MetricsAddr string
	Logger      *slog.Logger
}

// Watcher drives a Monitor on a ticker: it drains hints, runs scans and
// journals the resulting events.
type Watcher struct {
	mon     *monitor.Monitor
	opts    Options
	logger  *slog.Logger
	session string
	journal *journal
	native  *NativeHints

	tickMu sync.Mutex
	ticks  int

	stopCh  chan struct{}
	wg      sync.WaitGroup
	ticker  *time.Ticker
	started bool
}

// New creates a Watcher for mon. Listeners for the journal and metrics are
// registered on mon immediately.
func New(mon *monitor.Monitor, opts Options) (*Watcher, error) {
	if mon == nil {
		return nil, fmt.Errorf("monitor cannot be nil")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.FullScanEvery <= 0 {
		opts.FullScanEvery = defaultFullScanEvery
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w := &Watcher{
		mon:     mon,
		opts:    opts,
		logger:  logger,
		session: uuid.NewString(),
		stopCh:  make(chan struct{}),
	}
	if opts.Store != nil {
		w.journal = &journal{}
		mon.AddListener(w.journal)
	}
	if opts.Metrics != nil {
		mon.AddListener(opts.Metrics)
	}
	return w, nil
}

// Session identifies this watcher's events in the journal.
func (w *Watcher) Session() string {
	return w.session
}

// Start runs an initial full scan and then ticks every Interval until Stop.
func (w *Watcher) Start() error {
	if w.started {
		return fmt.Errorf("watcher already started")
	}
	w.started = true

	if err := w.FullScan(); err != nil {
		w.logger.Warn("initial scan", "err", err)
	}

	if w.opts.Native {
		native, err := NewNativeHints(w.mon, w.logger)
		if err != nil {
			return fmt.Errorf("failed to start native hints: %w", err)
		}
		w.native = native
		if err := w.native.Sync(); err != nil {
			w.logger.Warn("native hints sync", "err", err)
		}
	}

	w.ticker = time.NewTicker(w.opts.Interval)
	w.wg.Add(1)
	go w.run()

	w.logger.Info("watcher started",
		"session", w.session,
		"interval", w.opts.Interval,
		"requests", len(w.mon.Requests()))
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ticker.C:
			if err := w.Tick(); err != nil {
				w.logger.Warn("tick", "err", err)
			}
		case <-w.stopCh:
			return
		}
	}
}

// Tick performs one iteration: the hint log is drained, then either a full
// scan (every FullScanEvery ticks) or a notified scan runs, and the journal is
// flushed.
func (w *Watcher) Tick() error {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	w.ticks++
	var errs []error
	if err := w.drainHints(); err != nil {
		errs = append(errs, err)
	}

	if w.ticks%w.opts.FullScanEvery == 0 {
		errs = append(errs, w.scan(metrics.ScanFull, w.mon.ScanAll))
		if w.native != nil {
			if err := w.native.Sync(); err != nil {
				w.logger.Debug("native hints sync", "err", err)
			}
		}
	} else {
		errs = append(errs, w.scan(metrics.ScanNotified, w.mon.ScanNotified))
	}

	errs = append(errs, w.Flush())
	return errors.Join(errs...)
}

// FullScan runs ScanAll and flushes the journal.
func (w *Watcher) FullScan() error {
	w.tickMu.Lock()
	defer w.tickMu.Unlock()

	err := w.scan(metrics.ScanFull, w.mon.ScanAll)
	return errors.Join(err, w.Flush())
}

func (w *Watcher) scan(kind string, fn func() (int, error)) error {
	start := time.Now()
	n, err := fn()
	took := time.Since(start)

	if w.opts.Metrics != nil {
		w.opts.Metrics.ObserveScan(kind, took)
		w.opts.Metrics.SetMonitored(len(w.mon.Monitored()))
	}
	if n > 0 {
		w.logger.Debug("scan", "kind", kind, "events", n, "took", took)
	}
	if err != nil {
		return fmt.Errorf("%s scan: %w", kind, err)
	}
	return nil
}

func (w *Watcher) drainHints() error {
	if w.opts.HintsLog == "" {
		return nil
	}
	n, err := ProcessHintLog(w.mon, w.opts.HintsLog)
	if err != nil {
		return err
	}
	if n > 0 {
		w.logger.Debug("hints applied", "count", n)
	}
	return nil
}

// Flush writes buffered events to the store in one transaction. Events are
// kept for the next flush when the insert fails.
func (w *Watcher) Flush() error {
	if w.journal == nil {
		return nil
	}
	events := w.journal.drain()
	if len(events) == 0 {
		return nil
	}
	if err := w.opts.Store.InsertEvents(w.session, events); err != nil {
		w.journal.requeue(events)
		return fmt.Errorf("journal flush: %w", err)
	}
	return nil
}

// Stop halts the ticker, performs a final pass over pending hints and
// flushes the journal.
func (w *Watcher) Stop() error {
	if !w.started {
		return nil
	}
	close(w.stopCh)
	if w.ticker != nil {
		w.ticker.Stop()
	}
	w.wg.Wait()

	var errs []error
	if w.native != nil {
		errs = append(errs, w.native.Close())
	}

	w.tickMu.Lock()
	errs = append(errs, w.drainHints())
	errs = append(errs, w.scan(metrics.ScanNotified, w.mon.ScanNotified))
	errs = append(errs, w.Flush())
	w.tickMu.Unlock()

	w.logger.Info("watcher stopped", "session", w.session)
	return errors.Join(errs...)
}
