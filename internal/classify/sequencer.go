package classify

import (
	"fmt"
	"time"

	"sortline/internal/display"
	"sortline/internal/faults"
	"sortline/internal/figure"
	"sortline/internal/layout"
	"sortline/internal/timeline"
)

// Counter is the tally the sequencer increments on a successful release.
type Counter interface {
	Increment(kind figure.Kind) (int, error)
}

// Timing holds the delay after each stage and the claw transitions.
type Timing struct {
	PositionDelay  time.Duration
	GripDelay      time.Duration
	TransferDelay  time.Duration
	ReleaseDelay   time.Duration
	ResetDelay     time.Duration
	GripTransition time.Duration
	ClawTransition time.Duration
}

// DefaultTiming mirrors the stock stage delays.
func DefaultTiming() Timing {
	return Timing{
		PositionDelay:  300 * time.Millisecond,
		GripDelay:      300 * time.Millisecond,
		TransferDelay:  800 * time.Millisecond,
		ReleaseDelay:   300 * time.Millisecond,
		ResetDelay:     300 * time.Millisecond,
		GripTransition: 300 * time.Millisecond,
		ClawTransition: 800 * time.Millisecond,
	}
}

// delayAfter returns the wait between s and the next stage.
func (t Timing) delayAfter(s Stage) time.Duration {
	switch s {
	case StagePosition:
		return t.PositionDelay
	case StageGrip:
		return t.GripDelay
	case StageTransfer:
		return t.TransferDelay
	case StageRelease:
		return t.ReleaseDelay
	case StageTally:
		return t.ResetDelay
	default:
		return 0
	}
}

// Options configures a Sequencer.
type Options struct {
	Timing    Timing
	PickupX   float64
	HalfWidth float64
}

// Outcome reports how a sequence ended.
type Outcome struct {
	Handle      figure.Handle
	Kind        figure.Kind
	TargetX     float64
	Count       int
	FailedStage Stage
	Err         error
	Elapsed     time.Duration
}

// Hooks observe stage transitions. Both callbacks are optional.
type Hooks struct {
	OnStage func(Stage)
	// OnStageDone fires after a stage's actions, before its delay.
	OnStageDone func(Stage)
}

// Sequencer is the claw state machine.
type Sequencer struct {
	clock    timeline.Clock
	emit     display.Emitter
	layout   layout.Provider
	counter  Counter
	opts     Options
	current  Stage
	sequence int
}

// New constructs a sequencer.
func New(clock timeline.Clock, sink display.Sink, provider layout.Provider, counter Counter, opts Options) *Sequencer {
	return &Sequencer{
		clock:   clock,
		emit:    display.Emitter{Sink: sink, Now: clock.Now},
		layout:  provider,
		counter: counter,
		opts:    opts,
	}
}

// Current returns the stage in progress, or StageIdle.
func (s *Sequencer) Current() Stage { return s.current }

// Sequences returns the number of sequences started.
func (s *Sequencer) Sequences() int { return s.sequence }

type run struct {
	s       *Sequencer
	handle  figure.Handle
	kind    figure.Kind
	hooks   Hooks
	done    func(Outcome)
	started time.Duration

	targetX     float64
	count       int
	attached    bool
	highlighted bool
}

// Run starts the sequence for handle. done runs exactly once on the clock's
// goroutine when the reset stage finishes or a stage fails.
func (s *Sequencer) Run(handle figure.Handle, kind figure.Kind, hooks Hooks, done func(Outcome)) error {
	if s.current != StageIdle {
		return faults.Wrap(faults.ErrInFlight, s.current.String(), "start sequence", fmt.Sprintf("%s requested while claw busy", handle), nil)
	}
	s.sequence++
	r := &run{s: s, handle: handle, kind: kind, hooks: hooks, done: done, started: s.clock.Now()}
	r.enter(StagePosition)
	return nil
}

func (r *run) enter(stage Stage) {
	s := r.s
	s.current = stage
	if r.hooks.OnStage != nil {
		r.hooks.OnStage(stage)
	}
	if err := r.perform(stage); err != nil {
		r.fail(stage, err)
		return
	}
	if r.hooks.OnStageDone != nil {
		r.hooks.OnStageDone(stage)
	}
	if stage.Terminal() {
		r.finish(Outcome{})
		return
	}
	s.clock.After(s.opts.Timing.delayAfter(stage), func() { r.enter(stage + 1) })
}

func (r *run) perform(stage Stage) error {
	s := r.s
	switch stage {
	case StagePosition:
		s.emit.Emit(display.Event{Type: display.ClawShown, X: s.opts.PickupX})
	case StageGrip:
		s.emit.Emit(display.Event{Type: display.GripClosed, Transition: s.opts.Timing.GripTransition})
		s.emit.Emit(display.Event{Type: display.FigureAttached, Handle: r.handle})
		r.attached = true
	case StageTransfer:
		target, err := layout.BinTarget(s.layout, r.kind, s.opts.HalfWidth)
		if err != nil {
			if !r.kind.Known() {
				return faults.Wrap(faults.ErrUnknownKind, stage.String(), "resolve bin", fmt.Sprintf("figure kind %q cannot be sorted", r.kind), err)
			}
			return err
		}
		r.targetX = target
		s.emit.Emit(display.Event{Type: display.ClawMoved, X: target, Transition: s.opts.Timing.ClawTransition})
	case StageRelease:
		s.emit.Emit(display.Event{Type: display.BinHighlighted, Kind: r.kind})
		r.highlighted = true
		s.emit.Emit(display.Event{Type: display.GripOpened})
	case StageTally:
		count, err := s.tally(r.kind)
		r.discard()
		if err != nil {
			return err
		}
		r.count = count
	case StageReset:
		r.resetClaw()
	}
	return nil
}

func (s *Sequencer) tally(kind figure.Kind) (int, error) {
	if s.counter == nil {
		return 0, faults.Wrap(faults.ErrConfiguration, StageTally.String(), "increment counter", "counter store unavailable", nil)
	}
	return s.counter.Increment(kind)
}

// discard removes the figure from the display and clears the bin highlight.
func (r *run) discard() {
	s := r.s
	s.emit.Emit(display.Event{Type: display.FigureRemoved, Handle: r.handle, Kind: r.kind})
	r.attached = false
	if r.highlighted {
		s.emit.Emit(display.Event{Type: display.BinCleared, Kind: r.kind})
		r.highlighted = false
	}
}

func (r *run) resetClaw() {
	s := r.s
	s.emit.Emit(display.Event{Type: display.ClawHidden})
	s.emit.Emit(display.Event{Type: display.ClawReset, X: s.opts.PickupX})
}

func (r *run) fail(stage Stage, err error) {
	if stage != StageTally {
		r.discard()
	}
	r.resetClaw()
	r.finish(Outcome{FailedStage: stage, Err: err})
}

func (r *run) finish(out Outcome) {
	s := r.s
	s.current = StageIdle
	out.Handle = r.handle
	out.Kind = r.kind
	out.TargetX = r.targetX
	out.Count = r.count
	out.Elapsed = s.clock.Now() - r.started
	if r.done != nil {
		r.done(out)
	}
}
