package counters

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"sortline/internal/display"
	"sortline/internal/faults"
	"sortline/internal/figure"
	"sortline/internal/timeline"
)

const pulseScale = 1.2

// Store is the three-entry counter map.
type Store struct {
	mu     sync.RWMutex
	counts map[figure.Kind]int

	emit  display.Emitter
	clock timeline.Clock
	pulse time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithPulse enables the label pulse after each increment. The pulse reverts
// after d on clock.
func WithPulse(clock timeline.Clock, d time.Duration) Option {
	return func(s *Store) {
		s.clock = clock
		s.pulse = d
		if clock != nil {
			s.emit.Now = clock.Now
		}
	}
}

// New constructs a store with every known kind at zero.
func New(sink display.Sink, opts ...Option) *Store {
	counts := make(map[figure.Kind]int, 3)
	for _, kind := range figure.Kinds() {
		counts[kind] = 0
	}
	s := &Store{counts: counts, emit: display.Emitter{Sink: sink}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment adds one to kind and returns the new value. Kinds outside the
// fixed set are rejected with faults.ErrUnknownKind and change nothing.
func (s *Store) Increment(kind figure.Kind) (int, error) {
	s.mu.Lock()
	current, ok := s.counts[kind]
	if !ok {
		s.mu.Unlock()
		return 0, faults.Wrap(faults.ErrUnknownKind, "tally", "increment counter", fmt.Sprintf("no counter for %q", kind), nil)
	}
	current++
	s.counts[kind] = current
	s.mu.Unlock()

	s.emit.Emit(display.Event{Type: display.CounterSet, Kind: kind, Value: current})
	s.startPulse(kind)
	return current, nil
}

func (s *Store) startPulse(kind figure.Kind) {
	if s.clock == nil || s.pulse <= 0 {
		return
	}
	s.emit.Emit(display.Event{Type: display.CounterPulse, Kind: kind, Scale: pulseScale})
	s.clock.After(s.pulse, func() {
		s.emit.Emit(display.Event{Type: display.CounterPulse, Kind: kind, Scale: 1})
	})
}

// Get returns the tally for kind; unknown kinds read as zero.
func (s *Store) Get(kind figure.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[kind]
}

// Snapshot copies all tallies.
func (s *Store) Snapshot() map[figure.Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.counts)
}

// Total returns the sum of all tallies.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, v := range s.counts {
		total += v
	}
	return total
}

// Publish sends the current value of every counter to the sink, e.g. to
// initialise a fresh display.
func (s *Store) Publish() {
	for _, kind := range figure.Kinds() {
		s.emit.Emit(display.Event{Type: display.CounterSet, Kind: kind, Value: s.Get(kind)})
	}
}
