package display

import "sync"

// Recorder keeps every event it receives, in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Apply implements Sink.
func (r *Recorder) Apply(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(kind EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

// Types returns the sequence of event types, collapsing consecutive
// FigureMoved events into one entry.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		if e.Type == FigureMoved && len(out) > 0 && out[len(out)-1] == FigureMoved {
			continue
		}
		out = append(out, e.Type)
	}
	return out
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
