package queue_test

import (
	"testing"
	"time"

	"sortline/internal/figure"
	"sortline/internal/queue"
)

func fixedClock() func() time.Time {
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return base }
}

func TestEnqueueAssignsSequentialIDsInFIFOOrder(t *testing.T) {
	q := queue.New(queue.WithClock(fixedClock()))
	kinds := []figure.Kind{figure.Square, figure.Circle, figure.Triangle}
	for i, kind := range kinds {
		item := q.Enqueue(figure.Handle{ID: int64(i + 10), Kind: kind}, kind)
		if item.ID != int64(i+1) {
			t.Fatalf("expected id %d, got %d", i+1, item.ID)
		}
		if item.Status != queue.StatusPending {
			t.Fatalf("expected pending status, got %s", item.Status)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("expected len 3, got %d", q.Len())
	}
	for _, kind := range kinds {
		head, ok := q.PeekHead()
		if !ok || head.Kind != kind {
			t.Fatalf("expected head %s, got %+v", kind, head)
		}
		if _, ok := q.DequeueHead(); !ok {
			t.Fatal("dequeue failed on non-empty queue")
		}
	}
	if !q.Empty() {
		t.Fatalf("expected empty queue, got len %d", q.Len())
	}
}

func TestPeekAndDequeueOnEmptyQueue(t *testing.T) {
	q := queue.New()
	if _, ok := q.PeekHead(); ok {
		t.Fatal("expected not-found on empty peek")
	}
	if _, ok := q.DequeueHead(); ok {
		t.Fatal("expected not-found on empty dequeue")
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := queue.New()
	q.Enqueue(figure.Handle{ID: 1}, figure.Circle)
	for range 3 {
		if _, ok := q.PeekHead(); !ok {
			t.Fatal("expected head")
		}
	}
	if q.Len() != 1 {
		t.Fatalf("peek must not remove, len=%d", q.Len())
	}
}

func TestIDsKeepIncreasingAfterDrain(t *testing.T) {
	q := queue.New()
	q.Enqueue(figure.Handle{ID: 1}, figure.Square)
	q.DequeueHead()
	item := q.Enqueue(figure.Handle{ID: 2}, figure.Square)
	if item.ID != 2 {
		t.Fatalf("expected id 2 after drain, got %d", item.ID)
	}
}

func TestListSnapshotAndStats(t *testing.T) {
	q := queue.New()
	head := q.Enqueue(figure.Handle{ID: 1}, figure.Square)
	q.Enqueue(figure.Handle{ID: 2}, figure.Triangle)
	q.Touch(head, queue.StatusConveying, "conveying")

	list := q.List()
	if len(list) != 2 || list[0].Status != queue.StatusConveying || list[0].Stage != "conveying" {
		t.Fatalf("unexpected list %+v", list)
	}
	list[0].Status = queue.StatusFailed
	if head.Status != queue.StatusConveying {
		t.Fatal("List must return copies")
	}

	stats := q.Stats()
	if stats[queue.StatusConveying] != 1 || stats[queue.StatusPending] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
	if !head.IsProcessing() {
		t.Fatal("conveying item should be processing")
	}
}

func TestManyItemsSurviveCompaction(t *testing.T) {
	q := queue.New()
	for i := range 100 {
		q.Enqueue(figure.Handle{ID: int64(i + 1)}, figure.Circle)
	}
	for i := range 70 {
		item, ok := q.DequeueHead()
		if !ok || item.ID != int64(i+1) {
			t.Fatalf("dequeue %d returned %+v", i, item)
		}
	}
	head, ok := q.PeekHead()
	if !ok || head.ID != 71 || q.Len() != 30 {
		t.Fatalf("unexpected head %+v len %d", head, q.Len())
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus("  AT_PICKUP "); !ok || status != queue.StatusAtPickup {
		t.Fatalf("unexpected parse result %q %v", status, ok)
	}
	if _, ok := queue.ParseStatus("ripping"); ok {
		t.Fatal("unknown status should not parse")
	}
	if len(queue.AllStatuses()) != 6 {
		t.Fatal("unexpected status count")
	}
}
