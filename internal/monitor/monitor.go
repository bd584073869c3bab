package monitor

import (
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Options controls engine construction.
type Options struct {
	// FileSystem defaults to OSFileSystem.
	FileSystem FileSystem
	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
}

// entry is the registry's record of one request. The snapshot is nil until
// the request has been scanned for the first time.
type entry struct {
	req      *Request
	root     string
	snapshot map[string]time.Time
}

// Monitor is a polling file monitor. All methods are safe for concurrent use.
type Monitor struct {
	// scanMu serializes ScanAll and ScanNotified.
	scanMu sync.Mutex

	mu        sync.Mutex
	fs        FileSystem
	logger    *slog.Logger
	entries   []*entry
	byRequest map[*Request]*entry
	listeners []Listener

	// queue holds published batches awaiting delivery; dispatching is set
	// while one goroutine is delivering them.
	queue       []batch
	dispatching bool

	pendingChanged pathSet
	pendingCreated pathSet
	pendingDeleted pathSet

	// known holds every path ever observed; cursors holds, per consumer, the
	// paths changed since that consumer last asked.
	known   pathSet
	cursors map[string]pathSet
}

// New creates a Monitor over the local filesystem.
func New() *Monitor {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Monitor with custom options.
func NewWithOptions(options Options) *Monitor {
	fsys := options.FileSystem
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Monitor{
		fs:             fsys,
		logger:         logger,
		byRequest:      make(map[*Request]*entry),
		pendingChanged: pathSet{},
		pendingCreated: pathSet{},
		pendingDeleted: pathSet{},
		known:          pathSet{},
		cursors:        make(map[string]pathSet),
	}
}

type pathSet map[string]struct{}

func (s pathSet) add(path string)    { s[path] = struct{}{} }
func (s pathSet) remove(path string) { delete(s, path) }

func (s pathSet) has(path string) bool {
	_, ok := s[path]
	return ok
}

func (s pathSet) clear() {
	for path := range s {
		delete(s, path)
	}
}

func (s pathSet) sorted() []string {
	out := make([]string, 0, len(s))
	for path := range s {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]time.Time) []string {
	out := make([]string, 0, len(m))
	for path := range m {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
