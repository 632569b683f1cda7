// Package eventlog consumes per-worker page events: it logs them and
// records them as JSON lines in the debug sink.
package eventlog

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/user/framecast/pkg/ports"
)

// Record is the JSON form of one page event.
type Record struct {
	Worker  int                 `json:"worker"`
	Frame   int                 `json:"frame"` // -1 when no frame was in flight
	Kind    ports.PageEventKind `json:"kind"`
	Level   string              `json:"level,omitempty"`
	Message string              `json:"message"`
	Time    time.Time           `json:"time"`
}

// Observer implements ports.EventObserver.
type Observer struct {
	sink   ports.DebugSink
	logger ports.Logger

	mu     sync.Mutex
	counts map[ports.PageEventKind]int
}

// New creates an Observer. sink may be a disabled sink.
func New(sink ports.DebugSink, logger ports.Logger) *Observer {
	return &Observer{
		sink:   sink,
		logger: logger.WithComponent("page"),
		counts: make(map[ports.PageEventKind]int),
	}
}

// ObservePageEvent logs ev and appends it to the sink.
func (o *Observer) ObservePageEvent(workerID int, frame int, ev ports.PageEvent) {
	o.mu.Lock()
	o.counts[ev.Kind]++
	o.mu.Unlock()

	switch {
	case ev.Kind == ports.EventCrash:
		o.logger.Warn("Surface %d crashed while rendering frame %d", workerID, frame)
	case ev.IsError():
		o.logger.Warn("Page error on surface %d (frame %d): %s", workerID, frame, ev.Message)
	default:
		o.logger.Debug("console.%s on surface %d: %s", ev.Level, workerID, ev.Message)
	}

	if !o.sink.Enabled() {
		return
	}
	line, err := json.Marshal(Record{
		Worker:  workerID,
		Frame:   frame,
		Kind:    ev.Kind,
		Level:   ev.Level,
		Message: ev.Message,
		Time:    ev.Time,
	})
	if err != nil {
		return
	}
	if err := o.sink.AppendPageEvent(line); err != nil {
		o.logger.Debug("Failed to save page event: %v", err)
	}
}

// Count returns how many events of kind were observed.
func (o *Observer) Count(kind ports.PageEventKind) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[kind]
}

var _ ports.EventObserver = (*Observer)(nil)
