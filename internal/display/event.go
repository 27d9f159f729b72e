package display

import (
	"fmt"
	"time"

	"sortline/internal/figure"
)

// EventType names a visual change.
type EventType string

const (
	FigurePlaced   EventType = "figure_placed"
	FigureMoved    EventType = "figure_moved"
	FigureAttached EventType = "figure_attached"
	FigureRemoved  EventType = "figure_removed"
	ClawShown      EventType = "claw_shown"
	ClawMoved      EventType = "claw_moved"
	ClawHidden     EventType = "claw_hidden"
	ClawReset      EventType = "claw_reset"
	GripClosed     EventType = "grip_closed"
	GripOpened     EventType = "grip_opened"
	BinHighlighted EventType = "bin_highlighted"
	BinCleared     EventType = "bin_cleared"
	CounterSet     EventType = "counter_set"
	CounterPulse   EventType = "counter_pulse"
	DragMarker     EventType = "drag_marker"
)

// Event is one visual change. Only the fields relevant to Type are set.
type Event struct {
	Type       EventType
	At         time.Duration
	Handle     figure.Handle
	Kind       figure.Kind
	X          float64
	Y          float64
	Value      int
	Scale      float64
	On         bool
	Transition time.Duration
}

func (e Event) String() string {
	switch e.Type {
	case FigurePlaced:
		return fmt.Sprintf("%s %s at (%g,%g)", e.Type, e.Handle, e.X, e.Y)
	case FigureMoved:
		return fmt.Sprintf("%s %s x=%g", e.Type, e.Handle, e.X)
	case FigureAttached, FigureRemoved:
		return fmt.Sprintf("%s %s", e.Type, e.Handle)
	case ClawShown, ClawMoved, ClawReset:
		return fmt.Sprintf("%s x=%g transition=%s", e.Type, e.X, e.Transition)
	case BinHighlighted, BinCleared:
		return fmt.Sprintf("%s %s", e.Type, e.Kind)
	case CounterSet:
		return fmt.Sprintf("%s %s=%d", e.Type, e.Kind, e.Value)
	case CounterPulse:
		return fmt.Sprintf("%s %s scale=%g", e.Type, e.Kind, e.Scale)
	case DragMarker:
		return fmt.Sprintf("%s %s on=%t", e.Type, e.Kind, e.On)
	default:
		return string(e.Type)
	}
}

// Sink receives visual changes.
type Sink interface {
	Apply(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Apply implements Sink.
func (f SinkFunc) Apply(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Tee forwards each event to every non-nil sink in order.
type Tee []Sink

// Apply implements Sink.
func (t Tee) Apply(e Event) {
	for _, sink := range t {
		if sink != nil {
			sink.Apply(e)
		}
	}
}

// Emitter stamps events with the current clock reading before forwarding.
type Emitter struct {
	Sink Sink
	Now  func() time.Duration
}

// Emit publishes e, filling At when a clock is available.
func (em Emitter) Emit(e Event) {
	if em.Sink == nil {
		return
	}
	if em.Now != nil {
		e.At = em.Now()
	}
	em.Sink.Apply(e)
}
