package watcher

import (
	"sync"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
)

// journal buffers published events between flushes.
type journal struct {
	mu      sync.Mutex
	pending []monitor.FileEvent
}

func (j *journal) OnEvent(e monitor.FileEvent) error {
	j.mu.Lock()
	j.pending = append(j.pending, e)
	j.mu.Unlock()
	return nil
}

func (j *journal) drain() []monitor.FileEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	events := j.pending
	j.pending = nil
	return events
}

// requeue puts events back ahead of anything buffered since they were drained.
func (j *journal) requeue(events []monitor.FileEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pending = append(events, j.pending...)
}
