package motion

import (
	"fmt"
	"time"

	"sortline/internal/display"
	"sortline/internal/faults"
	"sortline/internal/figure"
	"sortline/internal/timeline"
)

// Options configures a Controller.
type Options struct {
	Step   float64
	Tick   time.Duration
	StartX float64
	StartY float64
}

// Result reports how a completed move ended.
type Result struct {
	Handle   figure.Handle
	Ticks    int
	Position float64
	Target   float64
	Elapsed  time.Duration
}

// Controller drives one figure's horizontal offset.
type Controller struct {
	clock timeline.Clock
	emit  display.Emitter
	opts  Options

	inFlight    int
	maxInFlight int
	runs        int
}

// New constructs a controller. Non-positive step or tick fall back to 3 units
// every 20ms.
func New(clock timeline.Clock, sink display.Sink, opts Options) *Controller {
	if opts.Step <= 0 {
		opts.Step = 3
	}
	if opts.Tick <= 0 {
		opts.Tick = 20 * time.Millisecond
	}
	return &Controller{
		clock: clock,
		emit:  display.Emitter{Sink: sink, Now: clock.Now},
		opts:  opts,
	}
}

// Start begins conveying handle toward target. done runs exactly once, on the
// clock's goroutine, after the tick on which the offset first reaches target.
func (c *Controller) Start(handle figure.Handle, target float64, done func(Result)) error {
	if c.inFlight > 0 {
		return faults.Wrap(faults.ErrInFlight, "conveying", "start motion", fmt.Sprintf("%s requested while another figure moves", handle), nil)
	}
	if target <= 0 {
		return faults.Wrap(faults.ErrValidation, "conveying", "start motion", fmt.Sprintf("target offset %g must be positive", target), nil)
	}
	c.inFlight++
	c.runs++
	c.maxInFlight = max(c.maxInFlight, c.inFlight)

	c.emit.Emit(display.Event{Type: display.FigurePlaced, Handle: handle, X: c.opts.StartX, Y: c.opts.StartY})

	started := c.clock.Now()
	position := 0.0
	ticks := 0
	var step func()
	step = func() {
		position += c.opts.Step
		ticks++
		c.emit.Emit(display.Event{Type: display.FigureMoved, Handle: handle, X: position})
		if position < target {
			c.clock.After(c.opts.Tick, step)
			return
		}
		c.inFlight--
		if done != nil {
			done(Result{
				Handle:   handle,
				Ticks:    ticks,
				Position: position,
				Target:   target,
				Elapsed:  c.clock.Now() - started,
			})
		}
	}
	c.clock.After(c.opts.Tick, step)
	return nil
}

// InFlight reports whether a figure is currently moving.
func (c *Controller) InFlight() bool { return c.inFlight > 0 }

// MaxInFlight returns the highest number of concurrent moves observed.
func (c *Controller) MaxInFlight() int { return c.maxInFlight }

// Runs returns how many moves have been started.
func (c *Controller) Runs() int { return c.runs }

// ExpectedTicks returns the number of ticks needed to reach target.
func ExpectedTicks(target, step float64) int {
	if target <= 0 || step <= 0 {
		return 0
	}
	n := int(target / step)
	if float64(n)*step < target {
		n++
	}
	return n
}
