package timeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sortline/internal/timeline"
)

func TestAfterRunsInTimeThenScheduleOrder(t *testing.T) {
	s := timeline.New()
	var order []string
	s.After(300*time.Millisecond, func() { order = append(order, "b") })
	s.After(100*time.Millisecond, func() { order = append(order, "a") })
	s.After(300*time.Millisecond, func() { order = append(order, "c") })

	if fired := s.RunUntilIdle(); fired != 3 {
		t.Fatalf("expected 3 fired, got %d", fired)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order %v", order)
		}
	}
	if s.Now() != 300*time.Millisecond {
		t.Fatalf("unexpected clock %v", s.Now())
	}
}

func TestNestedAfterIsRelativeToFiringTime(t *testing.T) {
	s := timeline.New()
	var at time.Duration
	s.After(200*time.Millisecond, func() {
		s.After(50*time.Millisecond, func() { at = s.Now() })
	})
	s.RunUntilIdle()
	if at != 250*time.Millisecond {
		t.Fatalf("expected nested callback at 250ms, got %v", at)
	}
}

func TestAdvanceByStopsAtBoundary(t *testing.T) {
	s := timeline.New()
	hits := 0
	s.After(100*time.Millisecond, func() { hits++ })
	s.After(101*time.Millisecond, func() { hits++ })

	s.AdvanceBy(100 * time.Millisecond)
	if hits != 1 {
		t.Fatalf("expected 1 hit at boundary, got %d", hits)
	}
	if s.Now() != 100*time.Millisecond || s.Pending() != 1 {
		t.Fatalf("unexpected state now=%v pending=%d", s.Now(), s.Pending())
	}
}

func TestRunVirtualReturnsWhenInputClosed(t *testing.T) {
	s := timeline.New()
	hits := 0
	s.After(time.Hour, func() { hits++ })
	s.CloseInput()

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("virtual run did not finish")
	}
	if hits != 1 || s.Now() != time.Hour {
		t.Fatalf("expected hour-long virtual delay to fire instantly, hits=%d now=%v", hits, s.Now())
	}
}

func TestPostRunsOnLoopGoroutine(t *testing.T) {
	s := timeline.New()
	got := make(chan time.Duration, 1)
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	if err := s.Post(func() {
		s.After(10*time.Millisecond, func() { got <- s.Now() })
	}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	select {
	case at := <-got:
		if at != 10*time.Millisecond {
			t.Fatalf("unexpected firing time %v", at)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("posted work never ran")
	}
	s.CloseInput()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if err := s.Post(func() {}); !errors.Is(err, timeline.ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
}

func TestRunRealtimePacesDelays(t *testing.T) {
	s := timeline.New(timeline.WithSpeed(10))
	s.After(200*time.Millisecond, func() {})
	s.CloseInput()

	start := time.Now()
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Fatalf("expected ~20ms of pacing at speed 10, got %v", elapsed)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	s := timeline.New(timeline.WithSpeed(1))
	s.After(time.Hour, func() {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
