package timeline

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInputClosed is returned by Post after CloseInput.
var ErrInputClosed = errors.New("scheduler input closed")

const defaultInboxSize = 64

// Scheduler runs timed callbacks on a single goroutine.
type Scheduler struct {
	speed float64

	now    time.Duration
	seq    uint64
	events eventHeap
	fired  uint64

	inbox     chan func()
	closeOnce sync.Once
	closeCh   chan struct{}
	closed    atomic.Bool
	running   atomic.Bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSpeed paces events against the wall clock. Zero or negative keeps the
// clock virtual.
func WithSpeed(speed float64) Option {
	return func(s *Scheduler) {
		if speed > 0 {
			s.speed = speed
		}
	}
}

// WithInboxSize sets the buffer of the cross-goroutine inbox.
func WithInboxSize(size int) Option {
	return func(s *Scheduler) {
		if size > 0 {
			s.inbox = make(chan func(), size)
		}
	}
}

// New constructs a scheduler starting at virtual time zero.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		inbox:   make(chan func(), defaultInboxSize),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current virtual time. Only meaningful on the loop goroutine.
func (s *Scheduler) Now() time.Duration { return s.now }

// Realtime reports whether delays are paced against the wall clock.
func (s *Scheduler) Realtime() bool { return s.speed > 0 }

// Pending returns the number of timed callbacks not yet fired.
func (s *Scheduler) Pending() int { return s.events.Len() }

// Fired returns how many timed callbacks have run.
func (s *Scheduler) Fired() uint64 { return s.fired }

// After schedules fn to run d after the current virtual time. It must be
// called from the loop goroutine or before Run starts. Callbacks due at the
// same instant run in scheduling order.
func (s *Scheduler) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	s.At(s.now+d, fn)
}

// At schedules fn at an absolute virtual time. Times in the past run at the
// current time.
func (s *Scheduler) At(at time.Duration, fn func()) {
	if fn == nil {
		return
	}
	if at < s.now {
		at = s.now
	}
	s.seq++
	heap.Push(&s.events, &event{due: at, seq: s.seq, fn: fn})
}

// Post hands fn to the loop goroutine. Safe for concurrent use; must not be
// called from the loop goroutine itself when the inbox may be full.
func (s *Scheduler) Post(fn func()) error {
	if fn == nil {
		return nil
	}
	if s.closed.Load() {
		return ErrInputClosed
	}
	select {
	case s.inbox <- fn:
		return nil
	case <-s.closeCh:
		return ErrInputClosed
	}
}

// CloseInput declares that no more Posts will arrive. Run returns once the
// inbox and the timed queue are both empty.
func (s *Scheduler) CloseInput() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
	})
}

// Run executes callbacks until the input is closed and nothing is pending,
// or ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("scheduler already running")
	}
	defer s.running.Store(false)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.drainInbox()

		next := s.events.peek()
		if next == nil {
			if s.closed.Load() {
				if s.drainInbox() > 0 {
					continue
				}
				return nil
			}
			select {
			case fn := <-s.inbox:
				fn()
			case <-s.closeCh:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		if wait := next.due - s.now; wait > 0 && s.speed > 0 {
			start := time.Now()
			timer := time.NewTimer(s.wall(wait))
			select {
			case <-timer.C:
			case fn := <-s.inbox:
				timer.Stop()
				s.now = min(next.due, s.now+s.virtual(time.Since(start)))
				fn()
				continue
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
		s.fire()
	}
}

// RunUntilIdle drains the inbox and fires every timed callback without
// pacing, returning the number fired. Intended for tests and instant runs.
func (s *Scheduler) RunUntilIdle() int {
	count := 0
	for {
		s.drainInbox()
		if s.events.peek() == nil {
			return count
		}
		s.fire()
		count++
	}
}

// AdvanceBy fires callbacks due within d of the current time and then moves
// the clock forward by exactly d.
func (s *Scheduler) AdvanceBy(d time.Duration) int {
	target := s.now + d
	count := 0
	for {
		s.drainInbox()
		next := s.events.peek()
		if next == nil || next.due > target {
			break
		}
		s.fire()
		count++
	}
	s.now = target
	return count
}

func (s *Scheduler) fire() {
	ev := heap.Pop(&s.events).(*event)
	if ev.due > s.now {
		s.now = ev.due
	}
	s.fired++
	ev.fn()
}

func (s *Scheduler) drainInbox() int {
	count := 0
	for {
		select {
		case fn := <-s.inbox:
			fn()
			count++
		default:
			return count
		}
	}
}

func (s *Scheduler) wall(d time.Duration) time.Duration {
	return time.Duration(float64(d) / s.speed)
}

func (s *Scheduler) virtual(d time.Duration) time.Duration {
	return time.Duration(float64(d) * s.speed)
}
