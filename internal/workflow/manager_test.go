package workflow_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"sortline/internal/config"
	"sortline/internal/display"
	"sortline/internal/figure"
	"sortline/internal/journal"
	"sortline/internal/queue"
	"sortline/internal/testsupport"
	"sortline/internal/workflow"
)

// one figure with the default layout: 234 ticks of 20ms, then 2s of claw work
const perFigure = 234*20*time.Millisecond + 2*time.Second

func kindsOf(items []queue.Item) []figure.Kind {
	out := make([]figure.Kind, len(items))
	for i, item := range items {
		out[i] = item.Kind
	}
	return out
}

func TestDropsWhileIdleDrainInFIFOOrder(t *testing.T) {
	h := testsupport.NewHarness(t, nil)
	mgr := h.Line.Manager

	if mgr.State() != workflow.StateIdle || mgr.Processing() {
		t.Fatalf("expected idle manager, got %s", mgr.State())
	}
	h.Drop(figure.Square)
	if mgr.State() != workflow.StateDraining || !mgr.Processing() {
		t.Fatalf("expected draining after first drop, got %s", mgr.State())
	}
	h.Drop(figure.Circle)
	h.Drop(figure.Triangle)

	h.Line.Scheduler.AdvanceBy(2 * perFigure)
	if got := mgr.Completed(); got != 2 {
		t.Fatalf("expected 2 completed after two figure cycles, got %d", got)
	}
	if mgr.State() != workflow.StateDraining {
		t.Fatalf("runner must stay draining until the queue is empty, got %s", mgr.State())
	}

	h.Drain()
	if mgr.State() != workflow.StateIdle || mgr.Processing() {
		t.Fatalf("expected idle after drain, got %s", mgr.State())
	}
	got := kindsOf(h.Finished())
	want := []figure.Kind{figure.Square, figure.Circle, figure.Triangle}
	if len(got) != len(want) {
		t.Fatalf("unexpected finished items %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("completion order %v, want %v", got, want)
		}
	}
	for _, item := range h.Finished() {
		if item.Status != queue.StatusSorted {
			t.Fatalf("item %d ended as %s", item.ID, item.Status)
		}
	}
	if mgr.Runs() != 1 || mgr.Completed() != 3 || !h.Line.Queue.Empty() {
		t.Fatalf("unexpected run stats runs=%d completed=%d queue=%d", mgr.Runs(), mgr.Completed(), h.Line.Queue.Len())
	}
}

func TestSingleDrainingRunNeverOverlapsMotion(t *testing.T) {
	h := testsupport.NewHarness(t, nil)
	for _, kind := range []figure.Kind{figure.Circle, figure.Circle, figure.Square, figure.Triangle} {
		h.Drop(kind)
	}
	h.Drain()

	if got := h.Line.Motion.MaxInFlight(); got != 1 {
		t.Fatalf("motion controller in flight %d times at once", got)
	}
	if h.Line.Motion.Runs() != 4 || h.Line.Sequencer.Sequences() != 4 {
		t.Fatalf("expected 4 moves and sequences, got %d and %d", h.Line.Motion.Runs(), h.Line.Sequencer.Sequences())
	}
	if h.Line.Manager.Runs() != 1 {
		t.Fatalf("expected exactly one draining run, got %d", h.Line.Manager.Runs())
	}
}

func TestDropCircleEndToEnd(t *testing.T) {
	h := testsupport.NewHarness(t, nil)
	h.Drop(figure.Circle)

	h.Line.Scheduler.AdvanceBy(perFigure - time.Millisecond)
	if h.Count(figure.Circle) != 1 {
		// the counter is bumped in the tally step, before the final reset delay
		t.Fatalf("expected circle counted before reset, got %d", h.Count(figure.Circle))
	}
	if h.Line.Manager.Completed() != 0 {
		t.Fatal("item must not complete before the reset step")
	}
	h.Drain()

	if h.Count(figure.Circle) != 1 || h.Count(figure.Square) != 0 || h.Count(figure.Triangle) != 0 {
		t.Fatalf("unexpected counters %v", h.Line.Counters.Snapshot())
	}
	finished := h.Finished()
	if len(finished) != 1 || finished[0].CounterValue != 1 || finished[0].TargetX != 370 {
		t.Fatalf("unexpected finished item %+v", finished)
	}
	snap := h.Line.Scene.Snapshot()
	if len(snap.Figures) != 0 || snap.Claw.Visible || snap.Counters[figure.Circle] != 1 {
		t.Fatalf("unexpected final scene %+v", snap)
	}
}

func TestSecondDropWaitsForFirstFigure(t *testing.T) {
	h := testsupport.NewHarness(t, nil)
	h.Drop(figure.Square)
	h.Line.Scheduler.AdvanceBy(100 * time.Millisecond)
	h.Drop(figure.Triangle)
	h.Drain()

	var squareRemoved, trianglePlaced = -1, -1
	for i, e := range h.Recorder.Events() {
		switch {
		case e.Type == display.FigureRemoved && e.Handle.Kind == figure.Square:
			squareRemoved = i
		case e.Type == display.FigurePlaced && e.Handle.Kind == figure.Triangle:
			trianglePlaced = i
		}
	}
	if squareRemoved < 0 || trianglePlaced < 0 || trianglePlaced < squareRemoved {
		t.Fatalf("triangle motion began before square was sorted (removed=%d placed=%d)", squareRemoved, trianglePlaced)
	}
	order := kindsOf(h.Finished())
	if len(order) != 2 || order[0] != figure.Square || order[1] != figure.Triangle {
		t.Fatalf("unexpected completion order %v", order)
	}
	if h.Count(figure.Square) != 1 || h.Count(figure.Triangle) != 1 || h.Count(figure.Circle) != 0 {
		t.Fatalf("unexpected counters %v", h.Line.Counters.Snapshot())
	}
}

func TestIdleRunnerRestartsOnLaterDrop(t *testing.T) {
	h := testsupport.NewHarness(t, nil)
	h.Drop(figure.Square)
	h.Drain()
	h.Drop(figure.Square)
	h.Drain()

	if h.Line.Manager.Runs() != 2 || h.Count(figure.Square) != 2 {
		t.Fatalf("expected two runs and square=2, got runs=%d square=%d", h.Line.Manager.Runs(), h.Count(figure.Square))
	}
	items := h.Finished()
	if items[0].ID != 1 || items[1].ID != 2 {
		t.Fatalf("unexpected item ids %d %d", items[0].ID, items[1].ID)
	}
}

func TestMissingBinHaltsLine(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutBin("square"))
	h := testsupport.NewHarness(t, cfg)
	mgr := h.Line.Manager

	h.Drop(figure.Square)
	h.Drop(figure.Circle)
	h.Drain()

	if mgr.State() != workflow.StateHalted || !mgr.Processing() {
		t.Fatalf("expected halted runner holding the flag, got %s", mgr.State())
	}
	finished := h.Finished()
	if len(finished) != 1 || finished[0].Status != queue.StatusFailed || finished[0].Stage != "transfer" {
		t.Fatalf("unexpected finished items %+v", finished)
	}
	if h.Count(figure.Circle) != 0 {
		t.Fatal("queued circle must not be processed after a halt")
	}

	status := mgr.Status(context.Background())
	if !strings.Contains(status.LastError, "missing bin") {
		t.Fatalf("expected missing bin error, got %q", status.LastError)
	}
	if len(status.Queue) != 2 || status.Queue[0].Status != queue.StatusFailed || status.Queue[1].Status != queue.StatusPending {
		t.Fatalf("unexpected queue snapshot %+v", status.Queue)
	}
	if health := status.StageHealth["sorting"]; health.Ready {
		t.Fatalf("sorting stage should report the missing bin, got %+v", health)
	}

	h.Drop(figure.Triangle)
	h.Drain()
	if h.Line.Motion.Runs() != 1 {
		t.Fatalf("drops after a halt must only queue, motion runs=%d", h.Line.Motion.Runs())
	}
	if h.Line.Queue.Len() != 3 {
		t.Fatalf("expected 3 queued items, got %d", h.Line.Queue.Len())
	}
}

func TestSkipPolicyContinuesPastFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOnFailure(config.OnFailureSkip))
	h := testsupport.NewHarness(t, cfg)

	h.Drop(figure.Kind("hexagon"))
	h.Drop(figure.Circle)
	h.Drain()

	mgr := h.Line.Manager
	if mgr.State() != workflow.StateIdle || mgr.Failed() != 1 || mgr.Completed() != 1 {
		t.Fatalf("unexpected state %s failed=%d completed=%d", mgr.State(), mgr.Failed(), mgr.Completed())
	}
	finished := h.Finished()
	if finished[0].Status != queue.StatusFailed || finished[1].Kind != figure.Circle || finished[1].Status != queue.StatusSorted {
		t.Fatalf("unexpected outcomes %+v", finished)
	}
	if h.Line.Counters.Total() != 1 {
		t.Fatalf("unexpected counters %v", h.Line.Counters.Snapshot())
	}
	if snap := h.Line.Scene.Snapshot(); len(snap.Figures) != 0 || snap.Claw.Visible {
		t.Fatalf("display left inconsistent after failure: %+v", snap)
	}
}

func TestJournalRecordsEveryOutcome(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOnFailure(config.OnFailureSkip))
	h := testsupport.NewHarness(t, cfg)
	h.Drop(figure.Triangle)
	h.Drop(figure.Kind("hexagon"))
	h.Drain()

	entries, err := h.Line.Journal.List(context.Background(), journal.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	sorted, failed := entries[0], entries[1]
	if sorted.Status != queue.StatusSorted || sorted.CounterValue != 1 || sorted.Duration() != perFigure {
		t.Fatalf("unexpected sorted entry %+v", sorted)
	}
	if failed.Status != queue.StatusFailed || failed.ErrorKind != "unknown_kind" || failed.ErrorMessage == "" {
		t.Fatalf("unexpected failed entry %+v", failed)
	}
	if _, err := uuid.Parse(sorted.RequestID); err != nil {
		t.Fatalf("request id %q is not a uuid: %v", sorted.RequestID, err)
	}
	if sorted.RequestID == failed.RequestID {
		t.Fatal("request ids must be unique per item")
	}
}

func TestStatusSummary(t *testing.T) {
	h := testsupport.NewHarness(t, nil)
	h.Drop(figure.Square)
	h.Line.Scheduler.AdvanceBy(time.Second)

	status := h.Line.Manager.Status(context.Background())
	if status.State != workflow.StateDraining || len(status.Queue) != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Queue[0].Status != queue.StatusConveying || status.QueueStats[queue.StatusConveying] != 1 {
		t.Fatalf("expected conveying head, got %+v", status.Queue[0])
	}
	if health := status.StageHealth["conveying"]; !health.Ready || !health.Busy {
		t.Fatalf("expected busy conveyor, got %+v", health)
	}
	if status.LastItem == nil || status.LastItem.ID != 1 {
		t.Fatalf("unexpected last item %+v", status.LastItem)
	}

	h.Drain()
	status = h.Line.Manager.Status(context.Background())
	if status.State != workflow.StateIdle || status.Counters[figure.Square] != 1 || status.LastError != "" {
		t.Fatalf("unexpected final status %+v", status)
	}
	for name, health := range status.StageHealth {
		if !health.Ready || health.Busy {
			t.Fatalf("stage %s not idle-ready: %+v", name, health)
		}
	}
}

func TestStatusReadableWhileLineRuns(t *testing.T) {
	h := testsupport.NewHarness(t, nil)
	mgr := h.Line.Manager

	stop := make(chan struct{})
	polled := make(chan int)
	go func() {
		busy := 0
		for {
			select {
			case <-stop:
				polled <- busy
				return
			default:
			}
			status := mgr.Status(context.Background())
			if status.StageHealth["conveying"].Busy || status.StageHealth["sorting"].Busy {
				busy++
			}
		}
	}()

	for _, kind := range []figure.Kind{figure.Circle, figure.Square, figure.Triangle} {
		h.Drop(kind)
	}
	h.Drain()
	close(stop)
	<-polled

	status := mgr.Status(context.Background())
	if status.Completed != 3 || status.State != workflow.StateIdle {
		t.Fatalf("unexpected final status %+v", status)
	}
	if len(status.StageHealth) != 2 {
		t.Fatalf("expected health for both stages, got %+v", status.StageHealth)
	}
}

func TestStatusReportsHealthBeforeFirstDrop(t *testing.T) {
	h := testsupport.NewHarness(t, nil)

	status := h.Line.Manager.Status(context.Background())
	for _, name := range []string{"conveying", "sorting"} {
		health, ok := status.StageHealth[name]
		if !ok || !health.Ready || health.Busy {
			t.Fatalf("stage %s: expected ready and idle, got %+v (present=%v)", name, health, ok)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	if got := workflow.StatusLabel(queue.StatusAtPickup); got != "At Pickup" {
		t.Fatalf("unexpected label %q", got)
	}
	if workflow.StatusLabel("") != "" {
		t.Fatal("empty status should have empty label")
	}
}

func TestStageLogsCarryItemContext(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStageOverride("sorting", "warn"))
	h := testsupport.NewHarness(t, cfg)
	h.Drop(figure.Circle)
	h.Drain()

	events := map[string][]map[string]any{}
	scanner := bufio.NewScanner(bytes.NewReader(h.Logs.Bytes()))
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", scanner.Text(), err)
		}
		if ev, ok := entry["event_type"].(string); ok {
			events[ev] = append(events[ev], entry)
		}
	}

	for _, ev := range []string{"drop_accepted", "runner_started", "stage_start", "stage_complete", "runner_idle"} {
		if len(events[ev]) == 0 {
			t.Fatalf("missing %s log event", ev)
		}
	}
	starts := events["stage_start"]
	if len(starts) != 1 {
		t.Fatalf("sorting override should suppress its info logs, got %d stage_start entries", len(starts))
	}
	start := starts[0]
	if start["stage"] != "conveying" || start["item_id"] != float64(1) {
		t.Fatalf("stage log missing context: %v", start)
	}
	if id, _ := start["correlation_id"].(string); id == "" {
		t.Fatalf("stage log missing correlation id: %v", start)
	}
}
