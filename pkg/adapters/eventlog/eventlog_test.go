package eventlog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/mocks"
	"github.com/user/framecast/pkg/ports"
)

func TestObserver_RecordsToSink(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	o := New(sink, logger.NewNoop())

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	o.ObservePageEvent(2, 7, ports.PageEvent{Kind: ports.EventConsole, Level: "log", Message: "hello", Time: now})
	o.ObservePageEvent(1, -1, ports.PageEvent{Kind: ports.EventPageError, Message: "boom", Time: now})

	lines := sink.Events()
	if len(lines) != 2 {
		t.Fatalf("recorded %d lines, want 2", len(lines))
	}
	var rec Record
	if err := json.Unmarshal(lines[0], &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec.Worker != 2 || rec.Frame != 7 || rec.Kind != ports.EventConsole || rec.Message != "hello" {
		t.Errorf("record = %+v", rec)
	}

	if o.Count(ports.EventConsole) != 1 || o.Count(ports.EventPageError) != 1 || o.Count(ports.EventCrash) != 0 {
		t.Error("unexpected counts")
	}
}

func TestObserver_DisabledSink(t *testing.T) {
	sink := mocks.NewDebugSink(false)
	o := New(sink, logger.NewNoop())
	o.ObservePageEvent(0, 0, ports.PageEvent{Kind: ports.EventCrash})

	if len(sink.Events()) != 0 {
		t.Error("disabled sink should not receive events")
	}
	if o.Count(ports.EventCrash) != 1 {
		t.Error("crash should still be counted")
	}
}
