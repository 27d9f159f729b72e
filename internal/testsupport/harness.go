package testsupport

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"sortline/internal/config"
	"sortline/internal/display"
	"sortline/internal/figure"
	"sortline/internal/input"
	"sortline/internal/linerun"
	"sortline/internal/logging"
	"sortline/internal/queue"
)

// Harness is a line on a virtual clock with a recording sink. Tests drive it
// from the test goroutine, which acts as the scheduler goroutine.
type Harness struct {
	t        testing.TB
	Line     *linerun.Line
	Recorder *display.Recorder
	Logs     *bytes.Buffer

	mu       sync.Mutex
	finished []queue.Item
}

// NewHarness builds a line from cfg (NewConfig when nil) with the journal
// enabled and JSON debug logs captured in Logs.
func NewHarness(t testing.TB, cfg *config.Config) *Harness {
	t.Helper()
	if cfg == nil {
		cfg = NewConfig(t)
	}
	h := &Harness{t: t, Recorder: display.NewRecorder(), Logs: &bytes.Buffer{}}
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: h.Logs})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	line, err := linerun.Build(context.Background(), cfg, linerun.BuildOptions{
		Sink:     h.Recorder,
		Logger:   logger,
		Instant:  true,
		Journal:  true,
		Observer: h.observe,
	})
	if err != nil {
		t.Fatalf("linerun.Build: %v", err)
	}
	t.Cleanup(func() { _ = line.Close() })
	h.Line = line
	return h
}

func (h *Harness) observe(item queue.Item) {
	h.mu.Lock()
	h.finished = append(h.finished, item)
	h.mu.Unlock()
}

// Drop delivers a drop event for kind immediately.
func (h *Harness) Drop(kind figure.Kind) {
	h.t.Helper()
	if _, err := h.Line.Input.Handle(context.Background(), input.Event{Type: input.Drop, Kind: kind}); err != nil {
		h.t.Fatalf("drop %s: %v", kind, err)
	}
}

// Drain fires every pending timer.
func (h *Harness) Drain() {
	h.Line.Scheduler.RunUntilIdle()
}

// Finished returns the items that left the line, in completion order.
func (h *Harness) Finished() []queue.Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]queue.Item, len(h.finished))
	copy(out, h.finished)
	return out
}

// Count returns the counter for kind.
func (h *Harness) Count(kind figure.Kind) int {
	return h.Line.Counters.Get(kind)
}
