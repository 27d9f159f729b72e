package display

import (
	"maps"
	"slices"
	"sync"
	"time"

	"sortline/internal/figure"
)

// FigureState is the visual state of one figure on the line.
type FigureState struct {
	Handle figure.Handle
	X      float64
	Y      float64
	OnClaw bool
}

// ClawState is the visual state of the claw.
type ClawState struct {
	Visible    bool
	X          float64
	Gripping   bool
	Transition time.Duration
	Holding    figure.Handle
}

// Snapshot is an immutable copy of a Scene.
type Snapshot struct {
	Figures     []FigureState
	Claw        ClawState
	Highlighted []figure.Kind
	Counters    map[figure.Kind]int
	Pulsing     []figure.Kind
	Grabbing    []figure.Kind
	Events      int
}

// Figure returns the state of the figure with id.
func (s Snapshot) Figure(id int64) (FigureState, bool) {
	for _, f := range s.Figures {
		if f.Handle.ID == id {
			return f, true
		}
	}
	return FigureState{}, false
}

// Scene folds events into the current visual state.
type Scene struct {
	mu          sync.RWMutex
	figures     map[int64]*FigureState
	claw        ClawState
	highlighted map[figure.Kind]bool
	counters    map[figure.Kind]int
	pulsing     map[figure.Kind]bool
	grabbing    map[figure.Kind]bool
	events      int
}

// NewScene returns an empty scene with zeroed counters for the known kinds.
func NewScene() *Scene {
	counters := make(map[figure.Kind]int, 3)
	for _, kind := range figure.Kinds() {
		counters[kind] = 0
	}
	return &Scene{
		figures:     make(map[int64]*FigureState),
		highlighted: make(map[figure.Kind]bool),
		counters:    counters,
		pulsing:     make(map[figure.Kind]bool),
		grabbing:    make(map[figure.Kind]bool),
	}
}

// Apply implements Sink.
func (s *Scene) Apply(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events++
	switch e.Type {
	case FigurePlaced:
		s.figures[e.Handle.ID] = &FigureState{Handle: e.Handle, X: e.X, Y: e.Y}
	case FigureMoved:
		if f, ok := s.figures[e.Handle.ID]; ok {
			f.X = e.X
		}
	case FigureAttached:
		if f, ok := s.figures[e.Handle.ID]; ok {
			f.OnClaw = true
		}
		s.claw.Holding = e.Handle
	case FigureRemoved:
		delete(s.figures, e.Handle.ID)
		if s.claw.Holding.ID == e.Handle.ID {
			s.claw.Holding = figure.Handle{}
		}
	case ClawShown:
		s.claw.Visible = true
		s.claw.X = e.X
		s.claw.Transition = e.Transition
	case ClawMoved:
		s.claw.X = e.X
		s.claw.Transition = e.Transition
	case ClawHidden:
		s.claw.Visible = false
	case ClawReset:
		s.claw.X = e.X
		s.claw.Transition = e.Transition
		s.claw.Gripping = false
		s.claw.Holding = figure.Handle{}
	case GripClosed:
		s.claw.Gripping = true
		s.claw.Transition = e.Transition
	case GripOpened:
		s.claw.Gripping = false
	case BinHighlighted:
		s.highlighted[e.Kind] = true
	case BinCleared:
		delete(s.highlighted, e.Kind)
	case CounterSet:
		s.counters[e.Kind] = e.Value
	case CounterPulse:
		if e.Scale > 1 {
			s.pulsing[e.Kind] = true
		} else {
			delete(s.pulsing, e.Kind)
		}
	case DragMarker:
		if e.On {
			s.grabbing[e.Kind] = true
		} else {
			delete(s.grabbing, e.Kind)
		}
	}
}

// Snapshot copies the current state.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Snapshot{
		Claw:        s.claw,
		Counters:    maps.Clone(s.counters),
		Highlighted: sortedKinds(s.highlighted),
		Pulsing:     sortedKinds(s.pulsing),
		Grabbing:    sortedKinds(s.grabbing),
		Events:      s.events,
	}
	ids := slices.Sorted(maps.Keys(s.figures))
	for _, id := range ids {
		out.Figures = append(out.Figures, *s.figures[id])
	}
	return out
}

func sortedKinds(set map[figure.Kind]bool) []figure.Kind {
	return slices.Sorted(maps.Keys(set))
}
